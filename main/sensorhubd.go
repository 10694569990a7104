/*
	Copyright (c) 2026 Viktor Hollo
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	sensorhubd.go: Service entry point. Brings up the sensor hub, the
	management interface and the hardware controls, and handles the
	daemon lifecycle.
*/

package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/takama/daemon"

	"github.com/vhollo/discosense/common"
)

const (
	// name of the service
	name        = "sensorhubd"
	description = "motion sensor hub: gyro and e-compass readout, logging and telemetry"

	// Address on which the management interface listens.
	managementAddr = ":9110"
)

var (
	hubVersion = "v0.4"
	hubBuild   = "" // set at build time with -ldflags

	stdlog, errlog *log.Logger
)

// Service has embedded daemon
type Service struct {
	daemon.Daemon
}

// Manage by daemon commands or run the daemon
func (service *Service) Manage() (string, error) {
	configFlag := flag.String("config", defaultConfigLocation, "Settings file location")
	flag.Parse()

	usage := "Usage: " + name + " install | remove | start | stop | status"
	// if received any kind of command, do it
	if flag.NArg() > 0 {
		command := os.Args[flag.NFlag()+1]
		switch command {
		case "install":
			return service.Install()
		case "remove":
			return service.Remove()
		case "start":
			return service.Start()
		case "stop":
			return service.Stop()
		case "status":
			return service.Status()
		default:
			return usage, nil
		}
	}

	configLocation = *configFlag

	if !common.IsRunningAsRoot() {
		log.Printf("%s Warning: not running as root, bus and GPIO access may fail.\n", name)
	}

	initLogging()
	log.Printf("%s %s (%s) starting.\n", name, hubVersion, hubBuild)

	readSettings()
	initMonitoring()
	initSensors()
	initDataLog()
	initHardwareControls()
	go managementInterface()

	// Set up channel on which to send signal notifications.
	// We must use a buffered channel or risk missing the signal
	// if we're not ready to receive when the signal is sent.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)

	for {
		killSignal := <-interrupt
		log.Println("Got signal:", killSignal)
		if killSignal == syscall.SIGUSR1 {
			readSettings()
			applySettings()
			continue
		}
		shutdownSensors()
		closeDataLog()
		closeHardwareControls()
		if killSignal == syscall.SIGINT {
			return "Daemon was interrupted by system signal", nil
		}
		return "Daemon was killed", nil
	}
}

func init() {
	stdlog = log.New(os.Stdout, "", 0)
	errlog = log.New(os.Stderr, "", 0)
}

func main() {
	srv, err := daemon.New(name, description, daemon.SystemDaemon)
	if err != nil {
		errlog.Println("Error: ", err)
		os.Exit(1)
	}
	service := &Service{srv}
	status, err := service.Manage()
	if err != nil {
		errlog.Println(status, "\nError: ", err)
		os.Exit(1)
	}
	stdlog.Println(status)
}
