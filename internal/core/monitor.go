package core

import "github.com/robgonnella/portsweep/internal/scanner"

// LogResults logs results as the scanner completes them. It returns once
// results is closed.
func (c *Core) LogResults(results <-chan scanner.PortResult) {
	for res := range results {
		if res.Status == scanner.StatusOpen {
			c.log.Info().
				Int("port", res.Port).
				Str("banner", res.Banner).
				Msg("found open port")
			continue
		}

		c.log.Debug().Int("port", res.Port).Msg("port closed")
	}
}
