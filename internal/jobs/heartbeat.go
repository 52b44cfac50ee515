package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/flemzord/crmd/internal/auditlog"
)

const heartbeatTimeLayout = "02/01/2006-15:04:05"

// heartbeatQuery is a minimal introspection query used to probe the GraphQL
// endpoint without touching application data.
const heartbeatQuery = `query { __schema { queryType { name } } }`

// HeartbeatJob appends a liveness line every tick, with a suffix describing
// whether the GraphQL endpoint answered. A heartbeat never fails the run:
// endpoint and sink problems are recorded, not returned.
type HeartbeatJob struct {
	GraphQLURL   string
	Sink         auditlog.Sink
	Logger       *slog.Logger
	Client       *http.Client     // defaults to a client with a 5 s timeout
	ScheduleExpr string           // empty = default "*/5 * * * *"
	Now          func() time.Time // injectable clock, defaults to time.Now
}

var _ Job = (*HeartbeatJob)(nil)

// Name implements Job.
func (j *HeartbeatJob) Name() string { return "heartbeat" }

// Schedule implements Job.
func (j *HeartbeatJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/5 * * * *"
}

// Run implements Job.
func (j *HeartbeatJob) Run(ctx context.Context) error {
	line := fmt.Sprintf("%s CRM is alive", j.now().Format(heartbeatTimeLayout))
	line += j.probe(ctx)

	if err := j.Sink.WriteLine(line); err != nil {
		// The heartbeat must not be lost silently when the sink is down.
		j.logger().Error("jobs: heartbeat line not written", "error", err, "line", line)
	}
	return nil
}

func (j *HeartbeatJob) probe(ctx context.Context) string {
	body, err := json.Marshal(map[string]string{"query": heartbeatQuery})
	if err != nil {
		return fmt.Sprintf(" - GraphQL endpoint unreachable: %s", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.GraphQLURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf(" - GraphQL endpoint unreachable: %s", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client().Do(req)
	if err != nil {
		return fmt.Sprintf(" - GraphQL endpoint unreachable: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return " - GraphQL endpoint responsive"
	}
	return fmt.Sprintf(" - GraphQL endpoint returned status %d", resp.StatusCode)
}

func (j *HeartbeatJob) client() *http.Client {
	if j.Client != nil {
		return j.Client
	}
	return &http.Client{Timeout: 5 * time.Second}
}

func (j *HeartbeatJob) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *HeartbeatJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
