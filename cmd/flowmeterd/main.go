// Command flowmeterd measures flow, pressure and temperature once per second
// and publishes the calibrated readings to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flowmeter/internal/analog"
	"flowmeter/internal/config"
	"flowmeter/internal/meter"
	"flowmeter/internal/mqtt"
	"flowmeter/internal/pulse"
	"flowmeter/internal/status"
	"flowmeter/internal/store"
	"flowmeter/internal/web"
)

// pollInterval is the granularity of the outer loop; the cycle clock decides
// when a measurement cycle actually fires.
const pollInterval = 100 * time.Millisecond

func main() {
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	calibration := flag.String("calibration", "", "Calibration YAML file (empty for built-in defaults)")
	chip := flag.String("chip", pulse.DefaultChip, "GPIO chip for the flow sensor")
	pin := flag.Int("pin", pulse.DefaultPin, "GPIO line offset for the flow sensor")
	i2cBus := flag.String("i2c", "", "I2C bus for the ADC (empty for first available)")
	statePath := flag.String("state", store.DefaultPath, "Totalizer state file")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	printState := flag.Bool("print-state", false, "Run one measurement cycle, print it and exit")

	flag.Parse()

	params := config.Default()
	if *calibration != "" {
		var err error
		params, err = config.Load(*calibration)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
	}

	if err := run(params, *broker, *chip, *pin, *i2cBus, *statePath, *heartbeat, *httpAddr, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(params config.Params, broker, chip string, pin int, i2cBus, statePath string, heartbeat time.Duration, httpAddr string, printState bool) error {
	// Initialize pulse capture
	counter := pulse.NewCounter(params.Flow.Debounce)
	source, err := pulse.NewRealSource(chip, pin, counter)
	if err != nil {
		return fmt.Errorf("init pulse capture: %w", err)
	}
	defer source.Close()

	// Initialize the analog front end
	reader, err := analog.NewRealReader(i2cBus, params.ADC.VRef)
	if err != nil {
		return fmt.Errorf("init adc: %w", err)
	}
	defer reader.Close()

	conv := analog.NewConverter(params)
	est := meter.NewEstimator(params.Flow)

	// Print-state mode: one full cycle on stdout, no MQTT, no persistence.
	if printState {
		printOneCycle(counter, reader, conv, est, params)
		return nil
	}

	// Restore the totalizer
	st, err := store.OpenBolt(statePath)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer st.Close()
	initialTotal := st.GetFloat(store.KeyTotal, 0)
	tot := meter.NewTotalizer(initialTotal, params.Persist.EveryCycles)
	log.Printf("restored totalizer: %.3f L", initialTotal)

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		CyclePeriodMs: params.Cycle.Period.Milliseconds(),
		DebounceUs:    params.Flow.Debounce.Microseconds(),
		HeartbeatMs:   heartbeat.Milliseconds(),
		PersistCycles: params.Persist.EveryCycles,
		Broker:        broker,
		HTTPAddr:      httpAddr,
		Chip:          chip,
		Pin:           pin,
		StatePath:     statePath,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: cycle=%v debounce=%v broker=%s heartbeat=%v",
		params.Cycle.Period, params.Flow.Debounce, broker, heartbeat)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loopDeps{
		counter:    counter,
		source:     source,
		reader:     reader,
		conv:       conv,
		est:        est,
		tot:        tot,
		store:      st,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		params:     params,
		heartbeat:  heartbeat,
	}, time.Now, ticker.C, sigCh)
}

// loopDeps carries everything the run loop needs; all of it is fakeable.
type loopDeps struct {
	counter    *pulse.Counter
	source     pulse.Source
	reader     analog.Reader
	conv       analog.Converter
	est        meter.Estimator
	tot        *meter.Totalizer
	store      store.Store
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	params     config.Params
	heartbeat  time.Duration
}

func runLoop(d loopDeps, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	clock := meter.NewCycleClock(d.params.Cycle.Period)
	clock.Tick(now())

	var counts meter.CycleCounts
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}

			// Stop edge delivery so the final flush sees a settled counter.
			if d.source != nil {
				if err := d.source.Close(); err != nil {
					log.Printf("closing pulse source: %v", err)
				}
			}

			// Flush the totalizer so at most one cycle of volume is lost.
			if err := d.store.PutFloat(store.KeyTotal, d.tot.TotalL()); err != nil {
				log.Printf("final totalizer write failed: %v", err)
			}

			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if d.tracker != nil {
				if d.mqttStatus != nil {
					d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
				}
				snap := d.tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			dt, fired := clock.Tick(t)
			if !fired {
				continue
			}

			count := d.counter.ReadAndReset()
			sample := d.est.Flow(count, dt)
			_, persist := d.tot.Accumulate(sample.FlowRateLpm, dt)

			counts.Cycles++
			if count > 0 && count < d.params.Flow.MinPulses {
				counts.NoiseCycles++
			}

			if persist {
				if err := d.store.PutFloat(store.KeyTotal, d.tot.TotalL()); err != nil {
					// Fire-and-forget: persistence failures never stop a cycle.
					log.Printf("totalizer write failed: %v", err)
				} else {
					counts.Persists++
				}
			}

			pressure, temperature := d.conv.Cycle(d.reader)

			readings := mqtt.Readings{
				Timestamp:   t,
				FlowLpm:     sample.FlowRateLpm,
				TotalL:      d.tot.TotalL(),
				Temperature: temperature,
				Pressure:    pressure,
			}
			if err := d.publisher.PublishReadings(readings); err != nil {
				log.Printf("publish error: %v", err)
				// Don't crash on publish failure
			}

			if d.tracker != nil {
				d.tracker.Update(sample, d.tot.TotalL(), pressure, temperature, counts)
				if d.mqttStatus != nil {
					d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
				}
			}

			// Check for heartbeat
			if d.heartbeat > 0 && t.Sub(lastHeartbeat) >= d.heartbeat {
				lastHeartbeat = t
				log.Printf("heartbeat: cycles=%d noise=%d total=%.3f L",
					counts.Cycles, counts.NoiseCycles, d.tot.TotalL())

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if d.tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						d.tracker.SetNetwork(net)
					}
					snap := d.tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// printOneCycle measures for one cycle period and prints the result.
func printOneCycle(counter *pulse.Counter, reader analog.Reader, conv analog.Converter, est meter.Estimator, params config.Params) {
	counter.ReadAndReset()
	start := time.Now()
	time.Sleep(params.Cycle.Period)
	dt := time.Since(start)

	sample := est.Flow(counter.ReadAndReset(), dt)
	pressure, temperature := conv.Cycle(reader)

	fmt.Printf("flow: %s L/min (%.1f Hz)\n", mqtt.FormatFlow(sample.FlowRateLpm), sample.FrequencyHz)
	fmt.Printf("pressure: %s kPa\n", mqtt.FormatReading(pressure))
	fmt.Printf("temperature: %s °C\n", mqtt.FormatReading(temperature))
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
