/*
	Copyright (c) 2026 Viktor Hollo
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	sensors.go: Bus setup, sensor connection management and the status
	update loop. Sensors are retried periodically so a chip that drops
	off the bus (or is plugged in late) comes back without a restart.
*/

package main

import (
	"log"
	"sync"
	"time"

	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/all"

	"github.com/vhollo/discosense/common"
	"github.com/vhollo/discosense/sensors"
	"github.com/vhollo/discosense/sensors/bus"
	"github.com/vhollo/discosense/sensors/l3gd20"
	"github.com/vhollo/discosense/sensors/lsm303dlhc"
)

const (
	// SPI wiring for the gyro: chip select 0, mode 3, 10 MHz max.
	gyroSPIChannel = 0
	gyroSPIClockHz = 10000000

	retryInterval  = 4 * time.Second
	statusInterval = 1 * time.Second
)

type status struct {
	Version string
	Uptime  string
	CPUTemp float32

	GyroConnected    bool
	CompassConnected bool

	GyroX, GyroY, GyroZ    float64 // degrees per second
	AccelX, AccelY, AccelZ float64 // g
	MagX, MagY, MagZ       float64 // gauss
	Heading                float64 // degrees, [0, 360)
	GyroTemp               float64 // degrees C
	MagTemp                float64 // degrees C

	GyroSamples      uint64
	GyroBusErrors    uint64
	CompassSamples   uint64
	CompassBusErrors uint64

	DataLogRows int64
	DiskFree    string
}

var (
	i2cbus    embd.I2CBus
	myGyro    *sensors.Gyro
	myCompass *sensors.Compass

	globalStatus status
	statusMutex  sync.Mutex

	hubClock *monotonic
)

func initSensors() {
	hubClock = NewMonotonic()
	i2cbus = embd.NewI2CBus(1)

	globalStatus.Version = hubVersion

	go common.CpuTempMonitor(func(cpuTemp float32) {
		statusMutex.Lock()
		globalStatus.CPUTemp = cpuTemp
		statusMutex.Unlock()
	})

	go pollSensorConnections()
	go updateStatus()
}

// pollSensorConnections retries disconnected sensors every few seconds.
func pollSensorConnections() {
	timer := time.NewTicker(retryInterval)
	for {
		if globalSettings.GyroEnabled && !globalStatus.GyroConnected {
			log.Println("Sensors Info: attempting gyro connection.")
			connected := initGyro()
			statusMutex.Lock()
			globalStatus.GyroConnected = connected
			statusMutex.Unlock()
		}
		if globalSettings.CompassEnabled && !globalStatus.CompassConnected {
			log.Println("Sensors Info: attempting compass connection.")
			connected := initCompass()
			statusMutex.Lock()
			globalStatus.CompassConnected = connected
			statusMutex.Unlock()
		}
		<-timer.C
	}
}

func initGyro() bool {
	spibus := embd.NewSPIBus(embd.SPIMode3, gyroSPIChannel, gyroSPIClockHz, 8, 0)
	gyro, err := sensors.NewGyro(l3gd20.New(bus.NewSPIConn(spibus)),
		time.Duration(globalSettings.PollIntervalMs)*time.Millisecond)
	if err != nil {
		log.Printf("Sensors Error: couldn't initialize L3GD20: %s\n", err.Error())
		spibus.Close()
		return false
	}
	myGyro = gyro
	if scale, err := gyroScaleSetting(); err == nil {
		if err := myGyro.SetFullScale(scale); err != nil {
			log.Printf("Sensors Warning: couldn't set gyro range: %s\n", err.Error())
		}
	}
	log.Println("Sensors Info: successfully initialized L3GD20.")
	return true
}

func initCompass() bool {
	accelConn := bus.NewI2CConn(i2cbus, lsm303dlhc.AccelAddress)
	magConn := bus.NewI2CConn(i2cbus, lsm303dlhc.MagAddress)
	compass, err := sensors.NewCompass(lsm303dlhc.New(accelConn, magConn),
		time.Duration(globalSettings.PollIntervalMs)*time.Millisecond)
	if err != nil {
		log.Printf("Sensors Error: couldn't initialize LSM303DLHC: %s\n", err.Error())
		return false
	}
	myCompass = compass
	applySettings()
	log.Println("Sensors Info: successfully initialized LSM303DLHC.")
	return true
}

// updateStatus copies the latest readings into globalStatus once a second
// and feeds the telemetry gauges.
func updateStatus() {
	timer := time.NewTicker(statusInterval)
	for {
		<-timer.C

		statusMutex.Lock()
		globalStatus.Uptime = hubClock.HumanizeTime(time.Time{})

		if myGyro != nil {
			if x, y, z, err := myGyro.AngularRate(); err == nil {
				globalStatus.GyroX, globalStatus.GyroY, globalStatus.GyroZ = x, y, z
			}
			if t, err := myGyro.Temperature(); err == nil {
				globalStatus.GyroTemp = t
			}
			globalStatus.GyroSamples = myGyro.Samples()
			globalStatus.GyroBusErrors = myGyro.BusErrors()
		}
		if myCompass != nil {
			if x, y, z, err := myCompass.Acceleration(); err == nil {
				globalStatus.AccelX, globalStatus.AccelY, globalStatus.AccelZ = x, y, z
			}
			if x, y, z, err := myCompass.MagneticField(); err == nil {
				globalStatus.MagX, globalStatus.MagY, globalStatus.MagZ = x, y, z
			}
			if h, err := myCompass.Heading(); err == nil {
				globalStatus.Heading = h
			}
			if t, err := myCompass.Temperature(); err == nil {
				globalStatus.MagTemp = t
			}
			globalStatus.CompassSamples = myCompass.Samples()
			globalStatus.CompassBusErrors = myCompass.BusErrors()
		}
		snapshot := globalStatus
		statusMutex.Unlock()

		logDbg("Status Debug: heading=%.1f samples=%d/%d busErrors=%d/%d\n",
			snapshot.Heading, snapshot.GyroSamples, snapshot.CompassSamples,
			snapshot.GyroBusErrors, snapshot.CompassBusErrors)
		updateMetrics(snapshot)
	}
}

func shutdownSensors() {
	if myGyro != nil {
		myGyro.Close()
	}
	if myCompass != nil {
		myCompass.Close()
	}
	if i2cbus != nil {
		i2cbus.Close()
	}
}
