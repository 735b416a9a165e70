package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details. Temperature is a pointer so an
// unavailable reading serializes as null, never as a fake number.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	FlowLpm       float64      `json:"flow_lpm"`
	FrequencyHz   float64      `json:"frequency_hz"`
	TotalL        float64      `json:"total_l"`
	PressureKPa   *float64     `json:"pressure_kpa"`
	TemperatureC  *float64     `json:"temperature_c"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"cycle_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of cycle counts.
type CountsJSON struct {
	Cycles      uint64 `json:"cycles"`
	NoiseCycles uint64 `json:"noise_cycles"`
	Persists    uint64 `json:"persists"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	CyclePeriodMs int64  `json:"cycle_period_ms"`
	DebounceUs    int64  `json:"debounce_us"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	PersistCycles int    `json:"persist_cycles"`
	Broker        string `json:"broker"`
	HTTPAddr      string `json:"http_addr"`
	Chip          string `json:"gpio_chip"`
	Pin           int    `json:"flow_pin"`
	StatePath     string `json:"state_path"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		FlowLpm:       snap.FlowLpm,
		FrequencyHz:   snap.FrequencyHz,
		TotalL:        snap.TotalL,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Cycles:      snap.Counts.Cycles,
			NoiseCycles: snap.Counts.NoiseCycles,
			Persists:    snap.Counts.Persists,
		},
		Config: ConfigJSON{
			CyclePeriodMs: snap.Config.CyclePeriodMs,
			DebounceUs:    snap.Config.DebounceUs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			PersistCycles: snap.Config.PersistCycles,
			Broker:        snap.Config.Broker,
			HTTPAddr:      snap.Config.HTTPAddr,
			Chip:          snap.Config.Chip,
			Pin:           snap.Config.Pin,
			StatePath:     snap.Config.StatePath,
		},
	}
	if snap.Pressure.Valid {
		v := snap.Pressure.Value
		inner.PressureKPa = &v
	}
	if snap.Temperature.Valid {
		v := snap.Temperature.Value
		inner.TemperatureC = &v
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
