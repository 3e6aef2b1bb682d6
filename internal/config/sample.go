package config

import (
	"os"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
)

// Init writes the starter configuration to path. Refuses to overwrite an
// existing file unless force is set.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return derrors.NewError(derrors.CategoryConfig, "configuration file already exists").
				WithContext("path", path).
				WithContext("reason", "use --force to overwrite").
				Build()
		}
	}
	if err := os.WriteFile(path, []byte(SampleYAML), 0o644); err != nil {
		return derrors.WrapError(err, derrors.CategoryConfig, "write configuration file").
			WithContext("path", path).
			Build()
	}
	return nil
}

// SampleYAML is the starter configuration written by the init command.
const SampleYAML = `# dispatchmon configuration

logging:
  level: info    # debug, info, warn, error
  format: text   # text or json

monitor:
  lead_time: 120s       # countdown from manifest intake to missing-tags timeout
  timer_period: 1s      # countdown decrement interval
  decision_period: 1s   # status evaluation interval
  queue_size: 256       # ingestion queue depth

http:
  api_port: 8080    # manifest intake, tag reads, status
  admin_port: 9090  # health and metrics

tagdb:
  path: ./dispatch-tags.db

eventstore:
  path: ./dispatch-events.db
  retention: 720h   # prune cycle events older than this
  history_size: 100 # in-memory cycle summaries served by the history endpoint

notifications:
  enabled: false
  nats_url: ""              # or set DISPATCHMON_NATS_URL
  subject_prefix: dispatch.notify
  stream: DISPATCH_NOTIFY

audit:
  interval: 60s # periodic status audit log

# Simulated reader script. Each entry delivers tag identifiers the given
# duration after daemon start.
reader:
  script: []
  # script:
  #   - after: 5s
  #     tag_ids: [E2000017221101441890, E2000017221101441891]
`
