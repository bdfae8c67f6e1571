package explain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/psxlens/internal/analytics"
	"github.com/dyike/psxlens/internal/logger"
	"github.com/dyike/psxlens/internal/models"
)

type fakeCompleter struct {
	text  string
	err   error
	delay time.Duration

	mu    sync.Mutex
	task  string
	data  string
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, task, data string) (string, error) {
	f.mu.Lock()
	f.task, f.data = task, data
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		// ignores ctx on purpose to check the explainer's own deadline
		time.Sleep(f.delay)
	}
	return f.text, f.err
}

type fakeChatModel struct {
	reply string
	input []*schema.Message
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.input = input
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.input = input
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(m.reply, nil)}), nil
}

func (m *fakeChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

func gainersResult() *analytics.Result {
	hbl := models.Record{
		Symbol:        "HBL",
		Sector:        "BANKS",
		PrevClose:     decimal.NewNullDecimal(decimal.RequireFromString("120.50")),
		Price:         decimal.NewNullDecimal(decimal.RequireFromString("121.75")),
		Change:        decimal.NewNullDecimal(decimal.RequireFromString("1.25")),
		ChangePercent: decimal.NewNullDecimal(decimal.RequireFromString("1.04")),
		Volume:        models.NewNullInt64(1234567),
	}
	hbl.ChangePercentDerived = true
	return &analytics.Result{
		Task:    analytics.TaskTopGainers,
		Records: []models.Record{hbl, {Symbol: "PPL"}},
	}
}

func TestExplainAttachesText(t *testing.T) {
	fc := &fakeCompleter{text: "  HBL led the gainers.  "}
	e := NewExplainer(fc, time.Second, logger.Nop())

	res := gainersResult()
	out := e.Explain(context.Background(), res, "")

	assert.Same(t, res, out.Result)
	assert.Equal(t, "HBL led the gainers.", out.Text)
	assert.Empty(t, out.Warning)
	assert.Equal(t, analytics.TaskTopGainers, fc.task)
	assert.Contains(t, fc.data, "1234567")
	assert.Contains(t, fc.data, "1.04*")
	assert.Contains(t, fc.data, "computed from CHANGE / LDCP")
}

func TestExplainFailuresBecomeWarnings(t *testing.T) {
	cases := []struct {
		name string
		fc   *fakeCompleter
	}{
		{"error", &fakeCompleter{err: errors.New("rate limited")}},
		{"empty", &fakeCompleter{text: "   "}},
		{"timeout", &fakeCompleter{text: "late", delay: 300 * time.Millisecond}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewExplainer(tc.fc, 50*time.Millisecond, logger.Nop())
			res := gainersResult()

			start := time.Now()
			out := e.Explain(context.Background(), res, "why did HBL rise")

			assert.Less(t, time.Since(start), 250*time.Millisecond)
			require.NotNil(t, out.Result)
			assert.Equal(t, res.Records, out.Result.Records)
			assert.Empty(t, out.Text)
			assert.Contains(t, out.Warning, "explanation")
		})
	}
}

func TestDisabledExplainer(t *testing.T) {
	e := Disabled("no OPENAI_API_KEY configured", logger.Nop())
	assert.False(t, e.Enabled())

	out := e.Explain(context.Background(), gainersResult(), "")
	assert.NotNil(t, out.Result)
	assert.Empty(t, out.Text)
	assert.Equal(t, "no OPENAI_API_KEY configured", out.Warning)

	var nilExplainer *Explainer
	assert.NotEmpty(t, nilExplainer.Explain(context.Background(), gainersResult(), "").Warning)
}

func TestExplainNilResult(t *testing.T) {
	fc := &fakeCompleter{text: "should not be asked"}
	e := NewExplainer(fc, time.Second, logger.Nop())

	out := e.Explain(context.Background(), nil, "top gainers")
	require.NotNil(t, out)
	assert.Nil(t, out.Result)
	assert.Empty(t, out.Text)
	assert.Contains(t, out.Warning, "no result")
	assert.Zero(t, fc.calls)

	assert.Equal(t, "(no records)", FormatData(nil))
}

func TestFormatDataOnlyCarriesResult(t *testing.T) {
	data := FormatData(gainersResult())
	lines := strings.Split(data, "\n")

	assert.Contains(t, lines[0], "SYMBOL")
	assert.Contains(t, lines[1], "HBL")
	assert.Contains(t, lines[2], "PPL")
	assert.NotContains(t, data, "<")

	assert.Equal(t, "(no records)", FormatData(&analytics.Result{Task: analytics.TaskTopLosers}))
}

func TestFormatDataOverview(t *testing.T) {
	res := &analytics.Result{
		Task: analytics.TaskOverview,
		Summary: &analytics.Summary{
			Records:     3,
			Advancers:   2,
			Decliners:   1,
			TotalVolume: 900,
			Sectors: []analytics.SectorSummary{
				{Sector: "BANKS", Records: 3, Volume: 900, MeanChangePercent: decimal.RequireFromString("0.5")},
			},
		},
	}
	data := FormatData(res)
	assert.Contains(t, data, "2 advancers")
	assert.Contains(t, data, "Total volume: 900")
	assert.Contains(t, data, "0.50")
}

func TestChainCompleter(t *testing.T) {
	cm := &fakeChatModel{reply: "Gainers were led by HBL."}
	c, err := NewChainCompleter(context.Background(), cm, logger.Nop())
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), "top gainers", "HBL 1.04 {raw}")
	require.NoError(t, err)
	assert.Equal(t, "Gainers were led by HBL.", text)

	require.Len(t, cm.input, 2)
	assert.Equal(t, schema.System, cm.input[0].Role)
	assert.Contains(t, cm.input[0].Content, "Never introduce prices")
	assert.Equal(t, schema.User, cm.input[1].Role)
	assert.Contains(t, cm.input[1].Content, "Task: top gainers")
	assert.Contains(t, cm.input[1].Content, "HBL 1.04 {raw}")
}
