// Command button-handler polls a push button on a GPIO line, classifies each
// press as short, medium or long, and publishes the events to MQTT.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/button-handler/internal/button"
	"github.com/sweeney/button-handler/internal/config"
	"github.com/sweeney/button-handler/internal/gpio"
	"github.com/sweeney/button-handler/internal/mqtt"
	"github.com/sweeney/button-handler/internal/status"
	"github.com/sweeney/button-handler/internal/web"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}
	cfg.WatchLogLevel(log.SetLevel)

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config) error {
	// Initialize GPIO
	reader, err := gpio.Open(cfg.Backend, cfg.Chip, cfg.Pin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	// Print state mode
	if cfg.PrintState {
		level, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("pin %d: %s\n", cfg.Pin, stateString(level))
		return nil
	}

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID, cfg.BufferSize)
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Backend:     cfg.Backend,
		Pin:         cfg.Pin,
		PollMs:      cfg.Poll.Milliseconds(),
		DebounceMs:  cfg.Button.Debounce.Milliseconds(),
		MediumMs:    cfg.Button.Medium.Milliseconds(),
		LongMs:      cfg.Button.Long.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		WSBroker:    cfg.WSBroker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	pin := gpio.NewPin(reader)
	btn := button.New(pin, button.NewSystemClock(), cfg.Button)
	tracker.Update(btn.State())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Errorf("failed to publish startup event: %v", err)
	} else {
		log.Info("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("http status server listening on %s", cfg.HTTPAddr)
	}

	log.WithFields(log.Fields{
		"backend":  cfg.Backend,
		"pin":      cfg.Pin,
		"poll":     cfg.Poll,
		"debounce": cfg.Button.Debounce,
		"medium":   cfg.Button.Medium,
		"long":     cfg.Button.Long,
		"broker":   cfg.Broker,
	}).Infof("started: state=%s", btn.State())

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(btn, pin, publisher, publisher, tracker, cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

// pinErrors reports GPIO read failures hidden behind button.Pin.
type pinErrors interface {
	Err() error
}

func runLoop(btn *button.Button, pin pinErrors, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Infof("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Errorf("failed to publish shutdown event: %v", err)
			} else {
				log.Info("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			btn.Update()
			// The button saw the last good level; keep polling so a
			// pending event is not lost.
			if err := pin.Err(); err != nil {
				log.Warnf("gpio read error: %v", err)
			}

			if kind := btn.PollEvent(); kind != button.EventNone {
				event := button.Event{
					Timestamp: t,
					Kind:      kind,
					State:     btn.State(),
				}
				if kind != button.EventPressed {
					event.Dwell = btn.Dwell()
				}
				log.WithFields(log.Fields{
					"event":    event.Kind,
					"duration": event.Dwell,
				}).Info("button event")
				if err := publisher.Publish(event); err != nil {
					log.Errorf("publish error: %v", err)
					// Don't crash on publish failure
				}
				if tracker != nil {
					tracker.Record(event)
				}
			}

			if tracker == nil {
				continue
			}

			// Update status tracker for HTTP consumers
			tracker.Update(btn.State())
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}

			if tracker.HeartbeatDue(t, heartbeat) {
				// Refresh network info for heartbeat
				if net := readNetworkInfo(); net != nil {
					tracker.SetNetwork(net)
				}
				snap := tracker.Snapshot()
				log.WithFields(log.Fields{
					"uptime": snap.Uptime().Truncate(time.Second),
					"short":  snap.Counts.Short,
					"medium": snap.Counts.Medium,
					"long":   snap.Counts.Long,
				}).Info("heartbeat")

				hbEvent := mqtt.SystemEvent{
					Timestamp:  t,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Errorf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// stateString renders a raw pull-up level as the logical button state.
func stateString(level bool) string {
	if level {
		return string(button.StateReleased)
	}
	return string(button.StatePressed)
}
