/*
	Copyright (c) 2026 Viktor Hollo
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	hwcontrol.go: Front-panel GPIO. A heartbeat LED blinks while samples
	are flowing, a fault LED comes on when a sensor drops off the bus,
	and the user button toggles data logging. All of it degrades
	gracefully when GPIO access isn't available.
*/

package main

import (
	"log"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

const (
	// BCM numbering
	heartbeatLEDPin = 17
	faultLEDPin     = 27
	dataLEDPin      = 23
	buttonPin       = 22

	buttonPollInterval = 50 * time.Millisecond
)

var (
	gpioAvailable bool
	hwQuit        chan struct{}
)

func initHardwareControls() {
	if err := rpio.Open(); err != nil {
		log.Printf("HW Warning: GPIO unavailable, front panel disabled: %s\n", err.Error())
		return
	}
	gpioAvailable = true
	hwQuit = make(chan struct{})

	heartbeat := rpio.Pin(heartbeatLEDPin)
	heartbeat.Output()
	fault := rpio.Pin(faultLEDPin)
	fault.Output()
	data := rpio.Pin(dataLEDPin)
	data.Output()
	button := rpio.Pin(buttonPin)
	button.Input()
	button.PullDown()

	go frontPanel(heartbeat, fault, data)
	go watchButton(button)
}

// frontPanel blinks the heartbeat LED while fresh samples keep arriving,
// drives the fault LED from the connection and bus error state, and lights
// the data LED while readings are being logged.
func frontPanel(heartbeat, fault, data rpio.Pin) {
	timer := time.NewTicker(1 * time.Second)
	defer timer.Stop()

	var lastSamples, lastBusErrors uint64
	var lastRows int64
	ledState := false

	for {
		select {
		case <-timer.C:
		case <-hwQuit:
			heartbeat.Low()
			fault.Low()
			data.Low()
			return
		}

		statusMutex.Lock()
		s := globalStatus
		statusMutex.Unlock()

		samples := s.GyroSamples + s.CompassSamples
		busErrors := s.GyroBusErrors + s.CompassBusErrors

		if samples > lastSamples {
			ledState = !ledState
			if ledState {
				heartbeat.High()
			} else {
				heartbeat.Low()
			}
		} else {
			heartbeat.Low()
		}

		wantGyro := globalSettings.GyroEnabled && !s.GyroConnected
		wantCompass := globalSettings.CompassEnabled && !s.CompassConnected
		if wantGyro || wantCompass || busErrors > lastBusErrors {
			fault.High()
		} else {
			fault.Low()
		}

		if globalSettings.DataLogEnabled && s.DataLogRows > lastRows {
			data.High()
		} else {
			data.Low()
		}

		lastSamples = samples
		lastBusErrors = busErrors
		lastRows = s.DataLogRows
	}
}

// watchButton debounces the user button and toggles data logging on each
// press. Active high.
func watchButton(button rpio.Pin) {
	timer := time.NewTicker(buttonPollInterval)
	defer timer.Stop()

	lastState := rpio.Low
	for {
		select {
		case <-timer.C:
		case <-hwQuit:
			return
		}

		state := button.Read()
		if state == rpio.High && lastState == rpio.Low {
			globalSettings.DataLogEnabled = !globalSettings.DataLogEnabled
			log.Printf("HW Info: button press, data logging now %t.\n", globalSettings.DataLogEnabled)
			saveSettings()
		}
		lastState = state
	}
}

func closeHardwareControls() {
	if !gpioAvailable {
		return
	}
	close(hwQuit)
	time.Sleep(buttonPollInterval) // let the goroutines clear the LEDs
	rpio.Close()
	gpioAvailable = false
}
