package logging

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/kcz17/measured/measuring"
	"go.uber.org/zap"
)

// influxDBLogger logs the output to an external InfluxDB instance.
type influxDBLogger struct {
	client      influxdb2.Client
	asyncWriter api.WriteAPI
}

func NewInfluxDBLogger(baseURL, authToken, org, bucket string, logger *zap.Logger) *influxDBLogger {
	options := influxdb2.DefaultOptions()
	options.WriteOptions().SetBatchSize(1000)
	options.WriteOptions().SetFlushInterval(250)

	client := influxdb2.NewClientWithOptions(baseURL, authToken, options)
	writeAPI := client.WriteAPI(org, bucket)

	// Create a goroutine for reading and logging async write errors.
	errorsCh := writeAPI.Errors()
	go func() {
		for err := range errorsCh {
			logger.Warn("influxdb2 logging async write error", zap.Error(err))
		}
	}()

	return &influxDBLogger{
		client:      client,
		asyncWriter: writeAPI,
	}
}

func (l *influxDBLogger) LogSummary(rows []measuring.SummaryRow) {
	timestamp := time.Now()
	for _, row := range rows {
		p := influxdb2.NewPointWithMeasurement("measured_summary").
			AddTag("path", row.Path).
			AddTag("method", row.Method).
			AddField("cnt", row.Count).
			AddField("sum", row.Sum).
			AddField("avg", row.Avg).
			AddField("max", row.Max).
			AddField("min", row.Min).
			SetTime(timestamp)
		l.asyncWriter.WritePoint(p)
	}
}

func (l *influxDBLogger) LogReset() {
	p := influxdb2.NewPointWithMeasurement("measured_reset").
		AddField("reset", true).
		SetTime(time.Now())
	l.asyncWriter.WritePoint(p)
}

// Close flushes pending points and releases the client.
func (l *influxDBLogger) Close() {
	l.asyncWriter.Flush()
	l.client.Close()
}
