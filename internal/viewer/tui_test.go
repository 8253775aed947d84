package viewer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/openmined/healthview/internal/healthsdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestModel_InitFetchesAndViewRenders(t *testing.T) {
	f := &fakeFetcher{result: healthsdk.Result{Status: parsed(t, `{"status":"ok"}`)}}
	m := NewModel(context.Background(), New(f))

	assert.Contains(t, m.View(), Title)
	assert.Contains(t, m.View(), StatusHeading)
	assert.Contains(t, m.View(), "null")

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, loadedMsg{}, msg)

	next, cmd := m.Update(msg)
	assert.Nil(t, cmd)
	assert.Contains(t, next.View(), "{\n  \"status\": \"ok\"\n}")
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestModel_FailureKeepsPlaceholder(t *testing.T) {
	f := &fakeFetcher{result: healthsdk.Result{Err: errors.New("boom")}}
	m := NewModel(context.Background(), New(f, WithLogger(quietLogger())))

	next, _ := m.Update(m.Init()())
	assert.Contains(t, next.View(), StatusHeading+"\nnull")
}

func TestModel_RerenderDoesNotRefetch(t *testing.T) {
	f := &fakeFetcher{result: healthsdk.Result{Status: parsed(t, `{}`)}}
	m := NewModel(context.Background(), New(f))

	next, _ := m.Update(m.Init()())
	next, _ = next.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	for range 3 {
		_ = next.View()
	}

	assert.EqualValues(t, 1, f.calls.Load())
}

func TestModel_QuitKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(k.String(), func(t *testing.T) {
			v := New(&fakeFetcher{})
			m := NewModel(context.Background(), v)

			_, cmd := m.Update(k)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.True(t, v.unmounted.Load())
		})
	}
}

func TestModel_OtherKeysIgnored(t *testing.T) {
	m := NewModel(context.Background(), New(&fakeFetcher{}))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
}
