package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telcoclean/internal/cleaning"
	"telcoclean/internal/config"
)

func stepIDs(steps []Step) []string {
	ids := make([]string, 0, len(steps))
	for _, s := range steps {
		ids = append(ids, s.ID())
	}
	return ids
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(newStubStep("a", nil, nil)))
	assert.Error(t, r.Register(newStubStep("a", nil, nil)), "duplicate id")
	assert.Error(t, r.Register(newStubStep("", nil, nil)), "empty id")
	assert.Error(t, r.Register(nil))

	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("b"))
	assert.Equal(t, 1, r.Count())

	step, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", step.ID())

	_, err = r.Get("b")
	assert.Error(t, err)
}

func TestRegistry_GetDependencyOrder(t *testing.T) {
	tests := []struct {
		name    string
		steps   []Step
		want    []string
		wantErr bool
	}{
		{
			name: "chain registered backwards",
			steps: []Step{
				newStubStep("c", []string{"b"}, nil),
				newStubStep("b", []string{"a"}, nil),
				newStubStep("a", nil, nil),
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "independent steps keep registration order",
			steps: []Step{
				newStubStep("y", nil, nil),
				newStubStep("x", nil, nil),
				newStubStep("z", []string{"x"}, nil),
			},
			want: []string{"y", "x", "z"},
		},
		{
			name: "missing dependency",
			steps: []Step{
				newStubStep("a", []string{"ghost"}, nil),
			},
			wantErr: true,
		},
		{
			name: "cycle",
			steps: []Step{
				newStubStep("a", []string{"b"}, nil),
				newStubStep("b", []string{"a"}, nil),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			for _, s := range tt.steps {
				require.NoError(t, r.Register(s))
			}

			ordered, err := r.GetDependencyOrder()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Error(t, r.ValidateDependencies())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, stepIDs(ordered))
		})
	}
}

func TestRegistry_CleaningStepsOrder(t *testing.T) {
	m, _ := newTestManager(t)

	ordered, err := m.GetRegistry().GetDependencyOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{
		StageIDDedup, StageIDCanonical, StageIDMissing, StageIDOutliers, StageIDConsistency,
	}, stepIDs(ordered))
}

// The step chain runs the stages in the same order as Stages.Clean.
func TestNewCleaningSteps_FollowsStageOrder(t *testing.T) {
	stages, err := cleaning.NewStages(cleaning.DefaultRules(config.Default().Rules))
	require.NoError(t, err)

	var want []string
	for _, stage := range stages.Ordered() {
		want = append(want, stage.ID)
	}

	steps := NewCleaningSteps(stages, discardLogger(), nil)
	require.Len(t, steps, len(want))
	assert.Equal(t, want, stepIDs(steps))

	assert.Empty(t, steps[0].GetDependencies())
	for i := 1; i < len(steps); i++ {
		assert.Equal(t, []string{want[i-1]}, steps[i].GetDependencies(), want[i])
		assert.NotEmpty(t, steps[i].Name(), want[i])
	}
	assert.Equal(t, StageNameDedup, steps[0].Name())
	assert.Equal(t, StageNameConsistency, steps[len(steps)-1].Name())
}
