/*
	Copyright (c) 2026 Viktor Hollo
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	datalog.go: Log sensor readings to a SQLite database, one row per
	second. Inserts stop when the card has less than 50 MB free.
*/

package main

import (
	"database/sql"
	"log"
	"path/filepath"
	"time"

	humanize "github.com/dustin/go-humanize"
	_ "github.com/mattn/go-sqlite3"
	"github.com/ricochet2200/go-disk-usage/du"
)

const (
	dataLogInterval = 1 * time.Second
	minLogDiskFree  = 50 * 1024 * 1024
)

var (
	dataLogDB   *sql.DB
	dataLogQuit chan struct{}
)

const readingsSchema = `
CREATE TABLE IF NOT EXISTS readings (
	id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	ts TEXT,
	heading REAL,
	gyro_x REAL, gyro_y REAL, gyro_z REAL,
	accel_x REAL, accel_y REAL, accel_z REAL,
	mag_x REAL, mag_y REAL, mag_z REAL,
	gyro_temp REAL, mag_temp REAL
)`

func initDataLog() {
	db, err := sql.Open("sqlite3", globalSettings.DataLogFile)
	if err != nil {
		log.Printf("Datalog Error: sql.Open(): %s\n", err.Error())
		return
	}
	if _, err := db.Exec(readingsSchema); err != nil {
		log.Printf("Datalog Error: couldn't create table: %s\n", err.Error())
		db.Close()
		return
	}
	dataLogDB = db
	dataLogQuit = make(chan struct{})
	go dataLogWriter()
}

func dataLogWriter() {
	timer := time.NewTicker(dataLogInterval)
	defer timer.Stop()

	lowDiskWarned := false
	dbDir := filepath.Dir(globalSettings.DataLogFile)

	for {
		select {
		case <-timer.C:
		case <-dataLogQuit:
			return
		}

		if !globalSettings.DataLogEnabled {
			continue
		}

		usage := du.NewDiskUsage(dbDir)
		free := usage.Free()
		statusMutex.Lock()
		globalStatus.DiskFree = humanize.Bytes(free)
		statusMutex.Unlock()
		if free < minLogDiskFree {
			if !lowDiskWarned {
				log.Printf("Datalog Warning: only %s free on %s, pausing logging.\n",
					humanize.Bytes(free), dbDir)
				lowDiskWarned = true
			}
			continue
		}
		lowDiskWarned = false

		statusMutex.Lock()
		s := globalStatus
		statusMutex.Unlock()
		if !s.GyroConnected && !s.CompassConnected {
			continue
		}

		res, err := dataLogDB.Exec(
			`INSERT INTO readings (ts, heading,
				gyro_x, gyro_y, gyro_z,
				accel_x, accel_y, accel_z,
				mag_x, mag_y, mag_z,
				gyro_temp, mag_temp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			time.Now().UTC().Format(time.RFC3339Nano), s.Heading,
			s.GyroX, s.GyroY, s.GyroZ,
			s.AccelX, s.AccelY, s.AccelZ,
			s.MagX, s.MagY, s.MagZ,
			s.GyroTemp, s.MagTemp)
		if err != nil {
			log.Printf("Datalog Error: insert failed: %s\n", err.Error())
			continue
		}
		if id, err := res.LastInsertId(); err == nil {
			statusMutex.Lock()
			globalStatus.DataLogRows = id
			statusMutex.Unlock()
		}
	}
}

func closeDataLog() {
	if dataLogDB == nil {
		return
	}
	close(dataLogQuit)
	dataLogDB.Close()
	dataLogDB = nil
}
