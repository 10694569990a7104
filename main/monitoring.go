/*
	Copyright (c) 2026 Viktor Hollo
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	monitoring.go: Prometheus telemetry, scraped from /metrics on the
	management interface.
*/

package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	headingDegrees = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "heading_degrees",
		Help: "Magnetic heading, degrees clockwise from north.",
	})

	angularRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "angular_rate_dps",
			Help: "Angular rate, degrees per second.",
		},
		[]string{"axis"},
	)

	acceleration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "acceleration_g",
			Help: "Acceleration, g.",
		},
		[]string{"axis"},
	)

	magneticField = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "magnetic_field_gauss",
			Help: "Magnetic field strength, gauss.",
		},
		[]string{"axis"},
	)

	sensorTemp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sensor_temp_celsius",
			Help: "Sensor die temperature, degrees C (uncalibrated).",
		},
		[]string{"sensor"},
	)

	cpuTemp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cpu_temp_celsius",
		Help: "Board CPU temperature, degrees C.",
	})

	sensorSamples = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sensor_samples_total",
			Help: "Completed sensor readings since startup.",
		},
		[]string{"sensor"},
	)

	sensorBusErrors = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sensor_bus_errors_total",
			Help: "Failed bus transactions since startup.",
		},
		[]string{"sensor"},
	)
)

func initMonitoring() {
	prometheus.MustRegister(headingDegrees)
	prometheus.MustRegister(angularRate)
	prometheus.MustRegister(acceleration)
	prometheus.MustRegister(magneticField)
	prometheus.MustRegister(sensorTemp)
	prometheus.MustRegister(cpuTemp)
	prometheus.MustRegister(sensorSamples)
	prometheus.MustRegister(sensorBusErrors)
}

func updateMetrics(s status) {
	headingDegrees.Set(s.Heading)
	angularRate.With(prometheus.Labels{"axis": "x"}).Set(s.GyroX)
	angularRate.With(prometheus.Labels{"axis": "y"}).Set(s.GyroY)
	angularRate.With(prometheus.Labels{"axis": "z"}).Set(s.GyroZ)
	acceleration.With(prometheus.Labels{"axis": "x"}).Set(s.AccelX)
	acceleration.With(prometheus.Labels{"axis": "y"}).Set(s.AccelY)
	acceleration.With(prometheus.Labels{"axis": "z"}).Set(s.AccelZ)
	magneticField.With(prometheus.Labels{"axis": "x"}).Set(s.MagX)
	magneticField.With(prometheus.Labels{"axis": "y"}).Set(s.MagY)
	magneticField.With(prometheus.Labels{"axis": "z"}).Set(s.MagZ)
	sensorTemp.With(prometheus.Labels{"sensor": "gyro"}).Set(s.GyroTemp)
	sensorTemp.With(prometheus.Labels{"sensor": "mag"}).Set(s.MagTemp)
	cpuTemp.Set(float64(s.CPUTemp))
	sensorSamples.With(prometheus.Labels{"sensor": "gyro"}).Set(float64(s.GyroSamples))
	sensorSamples.With(prometheus.Labels{"sensor": "compass"}).Set(float64(s.CompassSamples))
	sensorBusErrors.With(prometheus.Labels{"sensor": "gyro"}).Set(float64(s.GyroBusErrors))
	sensorBusErrors.With(prometheus.Labels{"sensor": "compass"}).Set(float64(s.CompassBusErrors))
}
