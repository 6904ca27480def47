package config

import (
	"reflect"
	"strings"

	logx "crondesc/pkg/logx"
)

// Summarize lists the sections that differ between two configs, plus log
// fields describing the new values. The telegram token is never included.
func Summarize(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	fields := make([]logx.Field, 0, 8)

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		fields = append(fields,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.file", newCfg.Logging.File.Enabled),
		)
	}
	if !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		changed = append(changed, "storage")
		if newCfg.Storage != nil {
			fields = append(fields, logx.String("storage.driver", newCfg.Storage.Driver))
		}
	}
	if oldCfg.Telegram.Token != newCfg.Telegram.Token ||
		strings.TrimSpace(oldCfg.Telegram.PollTimeout) != strings.TrimSpace(newCfg.Telegram.PollTimeout) ||
		!reflect.DeepEqual(oldCfg.Telegram.AllowedUserIDs, newCfg.Telegram.AllowedUserIDs) {
		changed = append(changed, "telegram")
		fields = append(fields, logx.Int("telegram.allowed_users", len(newCfg.Telegram.AllowedUserIDs)))
	}
	if oldCfg.Bot != newCfg.Bot {
		changed = append(changed, "bot")
		b := newCfg.Bot.WithDefaults()
		fields = append(fields,
			logx.Int("bot.rate_per_min", b.RatePerMin),
			logx.Int("bot.burst", b.Burst),
			logx.Int("bot.preview_runs", b.PreviewRuns),
		)
	}
	if len(changed) > 0 {
		fields = append(fields, logx.Strs("changed", changed))
	}
	return changed, fields
}

// RequiresRestart reports changes that cannot be applied to a running bot.
func RequiresRestart(oldCfg, newCfg *Config) bool {
	if oldCfg == nil || newCfg == nil {
		return false
	}
	return oldCfg.Telegram.Token != newCfg.Telegram.Token ||
		strings.TrimSpace(oldCfg.Telegram.PollTimeout) != strings.TrimSpace(newCfg.Telegram.PollTimeout) ||
		!reflect.DeepEqual(oldCfg.Storage, newCfg.Storage)
}
