package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"flowmeter/internal/analog"
	"flowmeter/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"reading": func(r analog.Reading, unit string) string {
		if !r.Valid {
			return "not available"
		}
		return fmt.Sprintf("%.2f %s", r.Value, unit)
	},
	"lpm": func(v float64) string {
		return fmt.Sprintf("%.2f L/min", v)
	},
	"liters": func(v float64) string {
		return fmt.Sprintf("%.3f L", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Flow Meter</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.flowing { color: green; font-weight: bold; }
.idle { color: #888; }
.na { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Flow Meter</h1>

<h2>Readings</h2>
<table>
<tr><th>Flow rate</th><td class="{{if gt .FlowLpm 0.0}}flowing{{else}}idle{{end}}">{{lpm .FlowLpm}}</td></tr>
<tr><th>Total volume</th><td>{{liters .TotalL}}</td></tr>
<tr><th>Pulse frequency</th><td>{{printf "%.1f Hz" .FrequencyHz}}</td></tr>
<tr><th>Pressure</th><td{{if not .Pressure.Valid}} class="na"{{end}}>{{reading .Pressure "kPa"}}</td></tr>
<tr><th>Temperature</th><td{{if not .Temperature.Valid}} class="na"{{end}}>{{reading .Temperature "°C"}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} — {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counters</h2>
<table>
<tr><th>Cycles</th><td>{{.Counts.Cycles}}</td></tr>
<tr><th>Noise cycles</th><td>{{.Counts.NoiseCycles}}</td></tr>
<tr><th>Totalizer writes</th><td>{{.Counts.Persists}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
</table>

<h2>Configuration</h2>
<table>
<tr><th>Cycle period</th><td>{{.Config.CyclePeriodMs}} ms</td></tr>
<tr><th>Pulse debounce</th><td>{{.Config.DebounceUs}} µs</td></tr>
<tr><th>Flow pin</th><td>{{.Config.Chip}}:{{.Config.Pin}}</td></tr>
<tr><th>Persist cadence</th><td>every {{.Config.PersistCycles}} cycles</td></tr>
<tr><th>State file</th><td>{{.Config.StatePath}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("web: render template: %v", err)
	}
}
