/*
	Copyright (c) 2026 Viktor Hollo
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	logging.go: Debug log setup, size-based rotation and old-log cleanup
	when the SD card runs low.
*/

package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ricochet2200/go-disk-usage/du"
)

const (
	logDir       = "/var/log"
	debugLogFile = "discosense.log"

	maxLogSize    = 10 * 1024 * 1024 // rotate above this
	minDiskFree   = 50 * 1024 * 1024 // start deleting old logs below this
	rotatedToKeep = 9
)

var (
	debugLogf     string
	logFileHandle *os.File
)

func getRotatedLogFiles() []string {
	entries, err := os.ReadDir(logDir)
	logs := make([]string, 0)
	if err != nil {
		return logs
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), debugLogFile+".") {
			logs = append(logs, filepath.Join(logDir, e.Name()))
		}
	}
	sort.Strings(logs)
	return logs
}

func rotateLogs() {
	logs := getRotatedLogFiles()

	// rename suffix, remove beyond the keep count
	for i := len(logs) - 1; i >= 0; i-- {
		parts := strings.Split(logs[i], ".")
		logNum, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			continue
		}
		if logNum >= rotatedToKeep {
			os.Remove(logs[i])
			continue
		}
		os.Rename(logs[i], filepath.Join(logDir, debugLogFile+"."+strconv.Itoa(logNum+1)))
	}

	os.Rename(debugLogf, debugLogf+".1")
	openLogFile()
}

func deleteOldestLog() int64 {
	logs := getRotatedLogFiles()
	if len(logs) == 0 {
		return 0
	}
	oldest := logs[len(logs)-1]
	stat, err := os.Stat(oldest)
	if err != nil {
		return 0
	}
	if err := os.Remove(oldest); err != nil {
		return 0
	}
	return stat.Size()
}

func logFileWatcher() {
	for {
		stat, err := os.Stat(debugLogf)
		if err == nil && stat.Size() > maxLogSize {
			rotateLogs()
		}

		usage := du.NewDiskUsage(logDir)
		freeBytes := int64(usage.Free())
		for freeBytes < minDiskFree {
			deleted := deleteOldestLog()
			if deleted == 0 {
				break
			}
			freeBytes += deleted
		}

		time.Sleep(30 * time.Second)
	}
}

func openLogFile() {
	oldFp := logFileHandle
	debugLogf = filepath.Join(logDir, debugLogFile)
	fp, err := os.OpenFile(debugLogf, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Failed to open log file '%s': %s\n", debugLogf, err.Error())
	} else {
		logFileHandle = fp
		mfp := io.MultiWriter(fp, os.Stdout)
		log.SetOutput(mfp)

		// Make sure crash dumps land in the log as well.
		syscall.Dup3(int(fp.Fd()), 2, 0)
	}
	if oldFp != nil {
		oldFp.Close()
	}
}

func initLogging() {
	openLogFile()
	go logFileWatcher()
}

func logDbg(msg string, args ...any) {
	if globalSettings.DEBUG {
		log.Printf(msg, args...)
	}
}
