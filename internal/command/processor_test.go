package command

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/SignalBridge/internal/riskconfig"
)

func newProcessor(t *testing.T) (*Processor, *riskconfig.Store) {
	t.Helper()
	store, err := riskconfig.Open(riskconfig.NewFilePersister(filepath.Join(t.TempDir(), "risk_config.json")), zerolog.Nop())
	require.NoError(t, err)
	return NewProcessor(store, zerolog.Nop()), store
}

func run(t *testing.T, p *Processor, text string) string {
	t.Helper()
	reply, handled := p.Handle(text)
	require.True(t, handled, text)
	return reply
}

func TestHandleIgnoresSignals(t *testing.T) {
	p, _ := newProcessor(t)
	for _, text := range []string{"", "long gold 1950 1940", "config", "tp", "adding gold"} {
		_, handled := p.Handle(text)
		assert.False(t, handled, text)
	}
}

func TestConfigHelpAndList(t *testing.T) {
	p, _ := newProcessor(t)

	assert.Contains(t, run(t, p, "config help"), "`config set fixed <name> <limits> <values>`")
	assert.Equal(t, "Mode: risk\nActive: default\nConfigurations: default", run(t, p, "CONFIG LIST"))

	run(t, p, "config create scalp")
	assert.Equal(t, "Mode: risk\nActive: default\nConfigurations: default, scalp", run(t, p, "config list"))
}

func TestConfigProfileLifecycle(t *testing.T) {
	p, store := newProcessor(t)

	assert.Equal(t, "Configuration 'scalp' created.", run(t, p, "config create scalp"))
	assert.Equal(t, "Configuration 'scalp' already exists.", run(t, p, "config create scalp"))
	assert.Equal(t, "Active configuration set to: scalp", run(t, p, "config set active scalp"))
	assert.Equal(t, "Configuration 'nope' not found.", run(t, p, "config set active nope"))
	assert.Equal(t, msgReserved, run(t, p, "config delete default"))
	assert.Equal(t, "Configuration 'scalp' deleted.", run(t, p, "config delete scalp"))
	assert.Equal(t, "Configuration 'scalp' not found.", run(t, p, "config delete scalp"))

	name, _, _ := store.Active()
	assert.Equal(t, riskconfig.DefaultProfile, name)
}

func TestConfigSetMode(t *testing.T) {
	p, store := newProcessor(t)

	assert.Equal(t, "Mode set to: fixed", run(t, p, "config set mode FIXED"))
	_, _, mode := store.Active()
	assert.Equal(t, riskconfig.ModeFixed, mode)

	assert.Equal(t, msgInvalidMode, run(t, p, "config set mode yolo"))
}

func TestConfigSetTables(t *testing.T) {
	p, store := newProcessor(t)

	assert.Equal(t, "Fixed lot values for 3 limit(s) in 'default' set to: 0.1 0.2 0.3",
		run(t, p, "config set fixed default 3 0.1 0.2 0.3"))
	assert.Equal(t, "Risk percentage values for 2 limit(s) in 'default' set to: 1.0 0.5%",
		run(t, p, "config set risk default 2 1 0.5"))

	profile, ok := store.Profile(riskconfig.DefaultProfile)
	require.True(t, ok)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, profile.FixedLots[3])
	assert.Equal(t, []float64{1, 0.5}, profile.RiskPercentages[2])

	tests := []struct {
		text string
		want string
	}{
		{"config set fixed default 9 1 1 1 1 1 1 1 1 1", msgLimitRange},
		{"config set fixed default 0", msgLimitRange},
		{"config set fixed default 3 0.1 0.2", "Expected 3 values, got 2."},
		{"config set fixed default two 0.1", msgNumberFormat},
		{"config set fixed default 1 abc", msgNumberFormat},
		{"config set fixed ghost 1 0.1", "Configuration 'ghost' not found."},
		{"config set risk default 1 150", "Invalid values: "},
		{"config set bogus default 1 1", msgInvalidConfig},
		{"config frobnicate", msgInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(run(t, p, tt.text), tt.want))
		})
	}

	after, _ := store.Profile(riskconfig.DefaultProfile)
	assert.Equal(t, profile, after, "rejected commands must not change state")
}

func TestConfigShow(t *testing.T) {
	p, _ := newProcessor(t)
	run(t, p, "config create scalp")
	run(t, p, "config set fixed scalp 1 0.5")

	out := run(t, p, "config show scalp")
	assert.True(t, strings.HasPrefix(out, "Configuration: scalp\n\nFixed lots:\n1 limit(s): 0.5\n"))
	assert.Contains(t, out, "\nRisk percentages:\n1 limit(s): ")
	assert.Less(t, strings.Index(out, "1 limit(s)"), strings.Index(out, "2 limit(s)"))

	assert.Equal(t, "Configuration 'ghost' not found.", run(t, p, "config show ghost"))
}

func TestTakeProfitCommands(t *testing.T) {
	p, store := newProcessor(t)

	assert.Equal(t, "Take profit for forex set to 10.0 pips.", run(t, p, "tp forex 10"))
	assert.Equal(t, "Take profit for gold set to $7.5.", run(t, p, "TP Gold 7.5"))
	assert.Equal(t, msgTPFormat, run(t, p, "tp forex"))
	assert.Equal(t, msgTPValue, run(t, p, "tp forex ten"))
	assert.Equal(t, msgTPValue, run(t, p, "tp forex -3"))

	assert.Equal(t, "Stock symbol 'AAPL.NAS' not found in configuration. Reply with `add AAPL.NAS` to add it.",
		run(t, p, "tp aapl.nas 4"))

	assert.Equal(t, "Stock symbol 'AAPL.NAS' added to configuration. Use `tp aapl.nas <pips>` to set the take profit.",
		run(t, p, "add aapl.nas"))
	assert.Equal(t, "Take profit for AAPL.NAS set to $4.0.", run(t, p, "tp aapl.nas 4"))
	assert.Contains(t, run(t, p, "add AAPL.NAS"), "already in the configuration")

	v, ok := store.TakeProfit("AAPL.NAS")
	require.True(t, ok)
	assert.Equal(t, 4.0, v, "re-adding keeps the configured value")

	v, _ = store.TakeProfit("gold")
	assert.Equal(t, 7.5, v)

	assert.Contains(t, run(t, p, "add AAPL"), "Invalid stock symbol format")
	assert.Equal(t, msgAddFormat, p.add([]string{"add"}))
}

func TestTakeProfitReport(t *testing.T) {
	p, _ := newProcessor(t)
	run(t, p, "tp forex 15")
	run(t, p, "tp gold 10")
	run(t, p, "add ko.nyse")

	out := run(t, p, "tp config")
	assert.True(t, strings.HasPrefix(out, "**Take Profit Configuration**\n\n**Forex Pairs:**\n• forex: 15.0 pips\n"))
	assert.Contains(t, out, "**Other Symbols:**\n")
	assert.Contains(t, out, "• gold: 10.0 dollars\n")
	assert.Contains(t, out, "**Stock Symbols:**\n• KO.NYSE: $0.0\n")
	assert.True(t, strings.HasSuffix(out, "(Forex uses pips, other symbols use dollar values)"))

	assert.Less(t, strings.Index(out, "btc:"), strings.Index(out, "gold:"))
}

type brokenPersister struct{ fail bool }

func (*brokenPersister) Load() (riskconfig.Document, error) { return riskconfig.DefaultDocument(), nil }

func (b *brokenPersister) Save(riskconfig.Document) error {
	if b.fail {
		return errors.New("disk full")
	}
	return nil
}

func TestPersistenceFailureIsReported(t *testing.T) {
	bp := &brokenPersister{}
	store, err := riskconfig.Open(bp, zerolog.Nop())
	require.NoError(t, err)
	p := NewProcessor(store, zerolog.Nop())
	bp.fail = true

	out := run(t, p, "config create swing")
	assert.True(t, strings.HasPrefix(out, "Configuration 'swing' created.\nWarning: "))
	assert.Contains(t, out, "disk full")

	_, ok := store.Profile("swing")
	assert.True(t, ok, "in-memory change is kept")
}
