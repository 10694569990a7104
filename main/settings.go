/*
	Copyright (c) 2026 Viktor Hollo
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	settings.go: User settings, saved to and restored from a JSON file.
	SIGUSR1 or a /setSettings call re-reads and re-applies them live.
*/

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/vhollo/discosense/sensors/l3gd20"
	"github.com/vhollo/discosense/sensors/lsm303dlhc"
)

const defaultConfigLocation = "/etc/discosense.conf"

var configLocation = defaultConfigLocation

type settings struct {
	GyroEnabled    bool
	CompassEnabled bool
	DataLogEnabled bool
	DEBUG          bool

	GyroRangeDPS  int     // 250, 500 or 2000
	AccelRangeG   int     // 2, 4, 8 or 16
	MagRangeGauss float64 // 1.3, 1.9, 2.5, 4.0, 4.7, 5.6 or 8.1

	PollIntervalMs int
	DataLogFile    string
}

var globalSettings settings

func defaultSettings() {
	globalSettings.GyroEnabled = true
	globalSettings.CompassEnabled = true
	globalSettings.DataLogEnabled = false
	globalSettings.DEBUG = false
	globalSettings.GyroRangeDPS = 250
	globalSettings.AccelRangeG = 2
	globalSettings.MagRangeGauss = 1.3
	globalSettings.PollIntervalMs = 10
	globalSettings.DataLogFile = "/var/log/discosense.db"
}

func readSettings() {
	fd, err := os.Open(configLocation)
	if err != nil {
		log.Printf("can't read settings %s: %s\n", configLocation, err.Error())
		defaultSettings()
		return
	}
	defer fd.Close()
	buf := make([]byte, 4096)
	count, err := fd.Read(buf)
	if err != nil {
		log.Printf("can't read settings %s: %s\n", configLocation, err.Error())
		defaultSettings()
		return
	}
	var newSettings settings
	err = json.Unmarshal(buf[0:count], &newSettings)
	if err != nil {
		log.Printf("can't read settings %s: %s\n", configLocation, err.Error())
		defaultSettings()
		return
	}
	globalSettings = newSettings
	log.Printf("read in settings.\n")
}

func saveSettings() {
	fd, err := os.OpenFile(configLocation, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(0644))
	if err != nil {
		log.Printf("can't save settings %s: %s\n", configLocation, err.Error())
		return
	}
	defer fd.Close()
	jsonSettings, _ := json.Marshal(&globalSettings)
	fd.Write(jsonSettings)
	log.Printf("wrote settings.\n")
}

func gyroScaleSetting() (l3gd20.FullScale, error) {
	switch globalSettings.GyroRangeDPS {
	case 250:
		return l3gd20.Scale250dps, nil
	case 500:
		return l3gd20.Scale500dps, nil
	case 2000:
		return l3gd20.Scale2000dps, nil
	}
	return l3gd20.Scale250dps, fmt.Errorf("unsupported gyro range %d dps", globalSettings.GyroRangeDPS)
}

func accelScaleSetting() (lsm303dlhc.AccelScale, error) {
	switch globalSettings.AccelRangeG {
	case 2:
		return lsm303dlhc.Scale2g, nil
	case 4:
		return lsm303dlhc.Scale4g, nil
	case 8:
		return lsm303dlhc.Scale8g, nil
	case 16:
		return lsm303dlhc.Scale16g, nil
	}
	return lsm303dlhc.Scale2g, fmt.Errorf("unsupported accelerometer range %d g", globalSettings.AccelRangeG)
}

func magGainSetting() (lsm303dlhc.MagGain, error) {
	switch globalSettings.MagRangeGauss {
	case 1.3:
		return lsm303dlhc.Gain1_3, nil
	case 1.9:
		return lsm303dlhc.Gain1_9, nil
	case 2.5:
		return lsm303dlhc.Gain2_5, nil
	case 4.0:
		return lsm303dlhc.Gain4_0, nil
	case 4.7:
		return lsm303dlhc.Gain4_7, nil
	case 5.6:
		return lsm303dlhc.Gain5_6, nil
	case 8.1:
		return lsm303dlhc.Gain8_1, nil
	}
	return lsm303dlhc.Gain1_3, fmt.Errorf("unsupported magnetometer range %v gauss", globalSettings.MagRangeGauss)
}

// applySettings pushes the range settings out to any connected sensor.
// Called after every settings change.
func applySettings() {
	if myGyro != nil {
		if scale, err := gyroScaleSetting(); err != nil {
			log.Printf("Settings Error: %s\n", err.Error())
		} else if err := myGyro.SetFullScale(scale); err != nil {
			log.Printf("Settings Error: couldn't set gyro range: %s\n", err.Error())
		}
	}
	if myCompass != nil {
		if scale, err := accelScaleSetting(); err != nil {
			log.Printf("Settings Error: %s\n", err.Error())
		} else if err := myCompass.SetAccelScale(scale); err != nil {
			log.Printf("Settings Error: couldn't set accelerometer range: %s\n", err.Error())
		}
		if gain, err := magGainSetting(); err != nil {
			log.Printf("Settings Error: %s\n", err.Error())
		} else if err := myCompass.SetMagGain(gain); err != nil {
			log.Printf("Settings Error: couldn't set magnetometer range: %s\n", err.Error())
		}
	}
}
