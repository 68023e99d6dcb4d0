package race

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateOutcome(t *testing.T) {
	running := Outcome{State: OutcomeRunning}

	tests := []struct {
		name    string
		current Outcome
		cars    []CarState
		want    Outcome
	}{
		{
			name:    "all active keeps running",
			current: running,
			cars:    []CarState{{ID: 1}, {ID: 2}},
			want:    running,
		},
		{
			name:    "some crashed keeps running",
			current: running,
			cars:    []CarState{{ID: 1, Status: StatusCrashed}, {ID: 2}},
			want:    running,
		},
		{
			name:    "single finisher wins",
			current: running,
			cars:    []CarState{{ID: 1, Status: StatusCrashed}, {ID: 2, Status: StatusFinished}},
			want:    Outcome{State: OutcomeFinished, Winner: 2},
		},
		{
			name:    "tie goes to lowest id",
			current: running,
			cars:    []CarState{{ID: 4, Status: StatusFinished}, {ID: 2, Status: StatusFinished}, {ID: 3, Status: StatusFinished}},
			want:    Outcome{State: OutcomeFinished, Winner: 2},
		},
		{
			name:    "all crashed has no winner",
			current: running,
			cars:    []CarState{{ID: 1, Status: StatusCrashed}, {ID: 2, Status: StatusCrashed}},
			want:    Outcome{State: OutcomeFinished},
		},
		{
			name:    "finished is terminal",
			current: Outcome{State: OutcomeFinished, Winner: 3},
			cars:    []CarState{{ID: 1, Status: StatusFinished}},
			want:    Outcome{State: OutcomeFinished, Winner: 3},
		},
		{
			name:    "no cars keeps running",
			current: running,
			want:    running,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateOutcome(tt.current, tt.cars))
		})
	}
}

func TestOutcome_JSON(t *testing.T) {
	b, err := json.Marshal(Outcome{State: OutcomeFinished, Winner: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"finished","winner":2}`, string(b))

	b, err = json.Marshal(Outcome{State: OutcomeFinished})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"finished","winner":null}`, string(b))

	var o Outcome
	require.NoError(t, json.Unmarshal([]byte(`{"state":"running","winner":null}`), &o))
	assert.Equal(t, Outcome{State: OutcomeRunning}, o)

	assert.Error(t, json.Unmarshal([]byte(`{"state":"paused"}`), &o))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "running", Outcome{}.String())
	assert.Equal(t, "finished(no winner)", Outcome{State: OutcomeFinished}.String())
	assert.Equal(t, "finished(winner=1)", Outcome{State: OutcomeFinished, Winner: 1}.String())
}
