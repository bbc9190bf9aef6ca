package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

// Policy holds CLI flags for the product policy. Values come from the
// defaults, then the policy file, then explicitly set flags.
type Policy struct {
	path              string
	maxDailyReactions int
	selectionCount    int
	timezone          string
}

// policyFile is the TOML layout of a policy file
type policyFile struct {
	MaxDailyReactions     *int   `toml:"max_daily_reactions"`
	DefaultSelectionCount *int   `toml:"default_selection_count"`
	MaxMembers            *int   `toml:"max_members"`
	Timezone              string `toml:"timezone"`
}

func (x *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to the policy TOML file",
			Category:    "Policy",
			Sources:     cli.EnvVars("SOUVELLA_POLICY"),
			Destination: &x.path,
		},
		&cli.IntFlag{
			Name:        "max-daily-reactions",
			Usage:       "Reactions each user may spend per day",
			Category:    "Policy",
			Value:       model.DefaultMaxDailyReactions,
			Sources:     cli.EnvVars("SOUVELLA_MAX_DAILY_REACTIONS"),
			Destination: &x.maxDailyReactions,
		},
		&cli.IntFlag{
			Name:        "selection-count",
			Usage:       "Default number of memories in the daily selection",
			Category:    "Policy",
			Value:       model.DefaultSelectionCount,
			Sources:     cli.EnvVars("SOUVELLA_SELECTION_COUNT"),
			Destination: &x.selectionCount,
		},
		&cli.StringFlag{
			Name:        "timezone",
			Usage:       "IANA time zone that defines the calendar day",
			Category:    "Policy",
			Value:       "UTC",
			Sources:     cli.EnvVars("SOUVELLA_TIMEZONE"),
			Destination: &x.timezone,
		},
	}
}

func (x Policy) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", x.path),
		slog.Int("max_daily_reactions", x.maxDailyReactions),
		slog.Int("selection_count", x.selectionCount),
		slog.String("timezone", x.timezone),
	)
}

// Configure builds the effective policy. c is used to tell explicitly set
// flags from defaults; with a nil command only the policy file applies.
func (x *Policy) Configure(c *cli.Command) (model.Policy, error) {
	policy := model.DefaultPolicy()
	timezone := ""

	if x.path != "" {
		file, err := loadPolicyFile(x.path)
		if err != nil {
			return model.Policy{}, err
		}
		if file.MaxDailyReactions != nil {
			policy.MaxDailyReactions = *file.MaxDailyReactions
		}
		if file.DefaultSelectionCount != nil {
			policy.DefaultSelectionCount = *file.DefaultSelectionCount
		}
		if file.MaxMembers != nil {
			policy.MaxMembers = *file.MaxMembers
		}
		timezone = file.Timezone
	}

	isSet := func(name string) bool { return c != nil && c.IsSet(name) }
	if isSet("max-daily-reactions") {
		policy.MaxDailyReactions = x.maxDailyReactions
	}
	if isSet("selection-count") {
		policy.DefaultSelectionCount = x.selectionCount
	}
	if isSet("timezone") || (timezone == "" && x.timezone != "") {
		timezone = x.timezone
	}

	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return model.Policy{}, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid timezone",
				goerr.V("timezone", timezone))
		}
		policy.Location = loc
	}

	if err := policy.Validate(); err != nil {
		return model.Policy{}, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid policy",
			goerr.V(ConfigPathKey, x.path))
	}
	return policy, nil
}

// loadPolicyFile reads a policy TOML file
func loadPolicyFile(path string) (*policyFile, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, goerr.Wrap(ErrConfigNotFound, "policy file not found", goerr.V(ConfigPathKey, path))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V(ConfigPathKey, path))
	}

	var file policyFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse policy file",
			goerr.V(ConfigPathKey, path))
	}
	return &file, nil
}
