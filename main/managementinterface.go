/*
	Copyright (c) 2026 Viktor Hollo
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	managementinterface.go: HTTP management interface. Status and settings
	over AJAX, a live status push over a websocket, and Prometheus metrics.
*/

package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/websocket"
)

type SettingMessage struct {
	Setting string `json:"setting"`
	Value   bool   `json:"state"`
}

func statusSender(conn *websocket.Conn) {
	timer := time.NewTicker(1 * time.Second)
	for {
		<-timer.C

		statusMutex.Lock()
		update, _ := json.Marshal(&globalStatus)
		statusMutex.Unlock()

		if _, err := conn.Write(update); err != nil {
			break
		}
	}
}

func handleManagementConnection(conn *websocket.Conn) {
	go statusSender(conn)

	for {
		var msg SettingMessage
		err := websocket.JSON.Receive(conn, &msg)
		if err == io.EOF {
			break
		} else if err != nil {
			log.Printf("handleManagementConnection: %s\n", err.Error())
		} else {
			switch msg.Setting {
			case "GyroEnabled":
				globalSettings.GyroEnabled = msg.Value
			case "CompassEnabled":
				globalSettings.CompassEnabled = msg.Value
			case "DataLogEnabled":
				globalSettings.DataLogEnabled = msg.Value
			case "DEBUG":
				globalSettings.DEBUG = msg.Value
			}
			saveSettings()
		}
	}
}

// AJAX call - /getStatus. Responds with the current sensor readings and
// connection state.
func handleStatusRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	statusMutex.Lock()
	statusJSON, _ := json.Marshal(&globalStatus)
	statusMutex.Unlock()
	w.Write(statusJSON)
}

// AJAX call - /getSettings. Responds with all current settings.
func handleSettingsGetRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	settingsJSON, _ := json.Marshal(&globalSettings)
	w.Write(settingsJSON)
}

// AJAX call - /setSettings. Updates and re-applies settings from a JSON
// body of the same shape /getSettings returns.
func handleSettingsSetRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	newSettings := globalSettings
	if err := json.NewDecoder(r.Body).Decode(&newSettings); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	globalSettings = newSettings
	saveSettings()
	applySettings()

	handleSettingsGetRequest(w, r)
}

func managementInterface() {
	http.HandleFunc("/control",
		func(w http.ResponseWriter, req *http.Request) {
			s := websocket.Server{
				Handler: websocket.Handler(handleManagementConnection)}
			s.ServeHTTP(w, req)
		})
	http.HandleFunc("/getStatus", handleStatusRequest)
	http.HandleFunc("/getSettings", handleSettingsGetRequest)
	http.HandleFunc("/setSettings", handleSettingsSetRequest)
	http.Handle("/metrics", promhttp.Handler())

	err := http.ListenAndServe(managementAddr, nil)
	if err != nil {
		log.Printf("managementInterface ListenAndServe: %s\n", err.Error())
	}
}
