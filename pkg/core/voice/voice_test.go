package voice

import (
	"context"
	"errors"
	"testing"
	"time"

	"obra_tracker/pkg/core/agent"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/llm"
	"obra_tracker/pkg/core/models"
	"obra_tracker/pkg/core/prompt"
	"obra_tracker/pkg/core/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply     string
	err       error
	agentType string
	prompt    string
	options   map[string]interface{}
}

func (f *fakeLLM) ExecutePrompt(_ context.Context, agentType, prompt, _ string, options map[string]interface{}) (string, error) {
	f.agentType, f.prompt, f.options = agentType, prompt, options
	return f.reply, f.err
}

type fakeStore struct {
	expenses []finance.Expense
	progress map[string]int
	units    []finance.Unit
	diary    []models.DiaryEntry
	audit    []models.AuditEntry
	failUnit error
}

func (s *fakeStore) CreateExpense(_ context.Context, e *finance.Expense) error {
	e.ID = "e1"
	s.expenses = append(s.expenses, *e)
	return nil
}

func (s *fakeStore) UpdateProgress(_ context.Context, id string, p int) error {
	if s.progress == nil {
		s.progress = map[string]int{}
	}
	s.progress[id] = p
	return nil
}

func (s *fakeStore) UpdateUnit(_ context.Context, u *finance.Unit) error {
	if s.failUnit != nil {
		return s.failUnit
	}
	s.units = append(s.units, *u)
	return nil
}

func (s *fakeStore) CreateDiaryEntry(_ context.Context, e *models.DiaryEntry) error {
	s.diary = append(s.diary, *e)
	return nil
}

func (s *fakeStore) RecordAudit(_ context.Context, e *models.AuditEntry) error {
	s.audit = append(s.audit, *e)
	return nil
}

var today = time.Date(2026, 10, 19, 15, 4, 0, 0, time.UTC)

func sampleProject() *finance.Project {
	sold := 300000.0
	return &finance.Project{
		ID: "p1", Name: "Residencial Aurora", Progress: 40,
		Units: []finance.Unit{
			{ID: "u1", ProjectID: "p1", Identifier: "Apto 101", Area: 60, Cost: 200000, Status: finance.StatusAvailable},
			{ID: "u2", ProjectID: "p1", Identifier: "Apto 102", Area: 60, Cost: 200000, Status: finance.StatusSold, SaleValue: &sold},
			{ID: "u3", ProjectID: "p1", Identifier: "Apto 201", Area: 60, Cost: 200000, Status: finance.StatusAvailable},
		},
		Expenses: []finance.Expense{{Macro: "Structure"}, {Macro: "Finishing"}, {Macro: "Structure"}},
	}
}

func newParser(reply string) (*Parser, *fakeLLM) {
	f := &fakeLLM{reply: reply}
	p := NewParser(f, prompt.NewRegistry())
	p.now = func() time.Time { return today }
	return p, f
}

func TestParseRendersContextAndReadsFencedReply(t *testing.T) {
	p, f := newParser("```json\n{\"action\": \"add_expense\", \"description\": \"Cimento\", \"value\": 1500, \"macro\": \"Structure\",}\n```")
	a, err := p.Parse(context.Background(), "comprei cimento, mil e quinhentos", *sampleProject())
	require.NoError(t, err)

	assert.Equal(t, ActionAddExpense, a.Action)
	assert.Equal(t, 1500.0, a.Value)
	assert.Equal(t, agent.VoiceCommand, f.agentType)
	assert.Equal(t, true, f.options[llm.OptJSON])
	assert.Contains(t, f.prompt, "Today is 2026-10-19")
	assert.Contains(t, f.prompt, "Apto 102 (sold)")
	assert.Contains(t, f.prompt, "Finishing, Structure")
}

func TestParseRejections(t *testing.T) {
	cases := map[string]struct {
		reply string
		want  error
	}{
		"unknown action":      {`{"action":"delete_project"}`, utils.ErrUnknownAction},
		"not json":            {`sorry, I could not understand`, utils.ErrUnknownAction},
		"expense without amt": {`{"action":"add_expense","description":"areia"}`, utils.ErrUnknownAction},
		"bad progress":        {`{"action":"update_progress","progress":45}`, utils.ErrInvalidProgress},
		"missing progress":    {`{"action":"update_progress"}`, utils.ErrInvalidProgress},
		"sale without unit":   {`{"action":"mark_unit_sold","sale_value":10}`, utils.ErrUnknownAction},
		"empty diary":         {`{"action":"add_diary","text":""}`, utils.ErrUnknownAction},
		"bad date":            {`{"action":"add_expense","description":"x","value":1,"date":"ontem"}`, utils.ErrUnknownAction},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p, _ := newParser(tc.reply)
			_, err := p.Parse(context.Background(), "something", *sampleProject())
			assert.ErrorIs(t, err, tc.want)
		})
	}

	p, _ := newParser("{}")
	_, err := p.Parse(context.Background(), "   ", *sampleProject())
	assert.ErrorIs(t, err, utils.ErrUnknownAction)
}

func TestParsePropagatesProviderFailure(t *testing.T) {
	p, f := newParser("")
	f.err = utils.ErrExternalServiceFailure
	_, err := p.Parse(context.Background(), "anything", *sampleProject())
	assert.ErrorIs(t, err, utils.ErrExternalServiceFailure)
}

func newExecutor() (*Executor, *fakeStore) {
	s := &fakeStore{}
	x := NewExecutor(s, s, s, s, s)
	x.now = func() time.Time { return today }
	return x, s
}

func TestExecuteAddExpense(t *testing.T) {
	x, s := newExecutor()
	res, err := x.Execute(context.Background(), sampleProject(), "user-1", &Action{
		Action: ActionAddExpense, Description: " Cimento ", Value: 1500, Macro: "Structure",
	})
	require.NoError(t, err)
	require.Len(t, s.expenses, 1)
	assert.Equal(t, "Cimento", s.expenses[0].Description)
	assert.Equal(t, "2026-10-19", s.expenses[0].Date.String())
	assert.Equal(t, "user-1", s.expenses[0].UserID)
	assert.Equal(t, "e1", res.Expense.ID)
	require.Len(t, s.audit, 1)
	assert.Equal(t, models.AuditExpenseCreated, s.audit[0].Action)
}

func TestExecuteUpdateProgress(t *testing.T) {
	x, s := newExecutor()
	project := sampleProject()
	p := 50
	res, err := x.Execute(context.Background(), project, "user-1", &Action{Action: ActionUpdateProgress, Progress: &p})
	require.NoError(t, err)
	assert.Equal(t, 50, s.progress["p1"])
	assert.Equal(t, 50, project.Progress)
	assert.Contains(t, res.Summary, "Roofing")
}

func TestExecuteMarkUnitSold(t *testing.T) {
	x, s := newExecutor()
	project := sampleProject()
	res, err := x.Execute(context.Background(), project, "user-1", &Action{
		Action: ActionMarkUnitSold, Unit: "apto 101", SaleValue: 350000, SaleDate: "2026-10-01",
	})
	require.NoError(t, err)
	require.Len(t, s.units, 1)
	assert.Equal(t, finance.StatusSold, s.units[0].Status)
	assert.Equal(t, 350000.0, *res.Unit.SaleValue)
	assert.Equal(t, "2026-10-01", res.Unit.SaleDate.String())
	assert.True(t, project.Units[0].IsSold())

	_, err = x.Execute(context.Background(), project, "user-1", &Action{Action: ActionMarkUnitSold, Unit: "Apto 102", SaleValue: 1})
	assert.ErrorIs(t, err, utils.ErrUnitAlreadySold)

	_, err = x.Execute(context.Background(), project, "user-1", &Action{Action: ActionMarkUnitSold, Unit: "Apto 999", SaleValue: 1})
	assert.ErrorIs(t, err, utils.ErrUnitNotFound)

	res, err = x.Execute(context.Background(), project, "user-1", &Action{Action: ActionMarkUnitSold, Unit: "201", SaleValue: 2})
	require.NoError(t, err)
	assert.Equal(t, "Apto 201", res.Unit.Identifier)
	assert.Equal(t, "2026-10-19", res.Unit.SaleDate.String())
}

func TestExecuteStoreFailureSkipsAudit(t *testing.T) {
	x, s := newExecutor()
	s.failUnit = errors.New("db down")
	_, err := x.Execute(context.Background(), sampleProject(), "user-1", &Action{Action: ActionMarkUnitSold, Unit: "Apto 101", SaleValue: 1})
	assert.Error(t, err)
	assert.Empty(t, s.audit)
}

func TestExecuteAddDiary(t *testing.T) {
	x, s := newExecutor()
	res, err := x.Execute(context.Background(), sampleProject(), "user-1", &Action{Action: ActionAddDiary, Text: "Laje concretada"})
	require.NoError(t, err)
	require.Len(t, s.diary, 1)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), s.diary[0].Date)
	assert.Equal(t, "Diary note added: Laje concretada", res.Summary)
	assert.Equal(t, models.AuditDiaryCreated, s.audit[0].Action)
}
