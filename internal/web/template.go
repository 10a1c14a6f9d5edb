package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/servo-tach/internal/status"
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
	"levelOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"speed": func(v float64) string {
		return fmt.Sprintf("%.3f", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Servo Tach</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.high { color: green; font-weight: bold; }
.low { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Servo Tach</h1>

<h2>State</h2>
<table>
<tr><th>Phase</th><td>{{.Phase}}</td></tr>
<tr><th>Level</th><td class="{{if eq (levelOrUnknown (printf "%s" .Level)) "HIGH"}}high{{else if eq (levelOrUnknown (printf "%s" .Level)) "LOW"}}low{{else}}unknown{{end}}">{{levelOrUnknown (printf "%s" .Level)}}</td></tr>
<tr><th>Calibrated</th><td>{{if .Calibrated}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Calibration</h2>
<table>
<tr><th>Range</th><td>{{.Range.Low}} &ndash; {{.Range.High}}</td></tr>
<tr><th>Thresholds</th><td>{{.Thresholds.Low}} / {{.Thresholds.High}}</td></tr>
</table>

<h2>Measurements</h2>
<table>
<tr><th>Revolutions</th><td>{{.Revolutions}}</td></tr>
<tr><th>Skipped</th><td>{{.Skipped}}</td></tr>
<tr><th>Last Interval</th><td>{{.LastIntervalMs}}ms</td></tr>
<tr><th>Speed</th><td>{{speed .RevPerSec}} rev/s</td></tr>
<tr><th>Average</th><td>{{speed .AvgRevPerSec}} rev/s</td></tr>
{{if not .SyncTime.IsZero}}<tr><th>Synced</th><td>{{.SyncTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Source</th><td>{{.Config.Source}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Trigger Pin</th><td>{{.Config.TriggerPin}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
