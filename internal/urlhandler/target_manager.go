package urlhandler

import (
	"bufio"
	"os"
	"strings"

	"envprobe/internal/errorwrapper"
	"envprobe/internal/models"

	"github.com/rs/zerolog"
)

// TargetManager loads and normalizes targets from an input file.
type TargetManager struct {
	logger zerolog.Logger
}

// NewTargetManager creates a new TargetManager.
func NewTargetManager(log zerolog.Logger) *TargetManager {
	return &TargetManager{
		logger: log.With().Str("component", "TargetManager").Logger(),
	}
}

// LoadTargets reads one target per line from the given file, accepting
// bare domains, host:port, user@host and full URLs. Blank lines and
// '#' comments are ignored; malformed lines are skipped with a warning.
// Identical normalized targets are deduplicated in first-seen order.
func (tm *TargetManager) LoadTargets(path string) ([]models.Target, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to open input file")
	}
	defer file.Close()

	var targets []models.Target
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		target, err := NormalizeTarget(line)
		if err != nil {
			tm.logger.Warn().Err(err).Int("line", lineNo).Msg("Skipping malformed target line")
			continue
		}
		if _, dup := seen[target.Host]; dup {
			tm.logger.Debug().Str("host", target.Host).Msg("Skipping duplicate target")
			continue
		}
		seen[target.Host] = struct{}{}
		targets = append(targets, target)
	}
	if err := scanner.Err(); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read input file")
	}

	tm.logger.Info().Int("count", len(targets)).Str("file", path).Msg("Loaded targets")
	return targets, nil
}
