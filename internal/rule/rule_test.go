package rule_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetscale/autoscaler-core/internal/rule"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

func testSpec() models.ScaleSpec {
	return models.ScaleSpec{
		ClusterId:     "cluster-1",
		SkuId:         "sku-a",
		MinSize:       11,
		MaxSize:       15,
		MinIdleToKeep: 5,
		MaxIdleToKeep: 10,
	}
}

func usage(idle, total int) models.UsageByMachineDefinition {
	return models.UsageByMachineDefinition{IdleCount: idle, TotalCount: total}
}

func TestApply_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		spec       models.ScaleSpec
		usage      models.UsageByMachineDefinition
		wantNil    bool
		wantType   models.ScaleType
		wantDesire int
	}{
		{
			name:       "S1 scale up clamped to minSize",
			spec:       testSpec(),
			usage:      usage(4, 10),
			wantType:   models.ScaleUp,
			wantDesire: 11,
		},
		{
			name:    "S2 within band no decision",
			spec:    testSpec(),
			usage:   usage(9, 11),
			wantNil: true,
		},
		{
			name: "S3 scale up clamped to maxSize",
			spec: func() models.ScaleSpec {
				s := testSpec()
				s.MaxIdleToKeep = 10
				return s
			}(),
			usage:      usage(0, 11),
			wantType:   models.ScaleUp,
			wantDesire: 15,
		},
		{
			name: "S4 scale down unclamped",
			spec: func() models.ScaleSpec {
				s := testSpec()
				s.MaxIdleToKeep = 10
				return s
			}(),
			usage:      usage(15, 20),
			wantType:   models.ScaleDown,
			wantDesire: 15,
		},
		{
			name: "S5 scale down clamped to minSize",
			spec: func() models.ScaleSpec {
				s := testSpec()
				s.MaxIdleToKeep = 10
				return s
			}(),
			usage:      usage(15, 15),
			wantType:   models.ScaleDown,
			wantDesire: 11,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := rule.New(tc.spec, clockwork.NewFakeClock())
			got := r.Apply(tc.usage)

			if tc.wantNil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tc.wantType, got.Type)
			assert.Equal(t, tc.wantDesire, got.DesireSize)
			assert.Equal(t, tc.wantDesire, got.MinSize)
			assert.Equal(t, tc.wantDesire, got.MaxSize)
		})
	}
}

func TestApply_S6_CooldownSuppressesSecondCall(t *testing.T) {
	clock := clockwork.NewFakeClock()
	spec := testSpec()
	spec.CoolDown = 10 * time.Second
	r := rule.New(spec, clock)

	first := r.Apply(usage(4, 10))
	require.NotNil(t, first)
	assert.Equal(t, models.ScaleUp, first.Type)
	assert.Equal(t, 11, first.DesireSize)

	second := r.Apply(usage(4, 10))
	assert.Nil(t, second)
}

func TestApply_S7_CooldownElapsedAllowsRetry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	spec := testSpec()
	spec.CoolDown = 2 * time.Second
	r := rule.New(spec, clock)

	first := r.Apply(usage(4, 10))
	require.NotNil(t, first)

	clock.Advance(3 * time.Second)

	second := r.Apply(usage(4, 10))
	require.NotNil(t, second)
	assert.Equal(t, models.ScaleUp, second.Type)
	assert.Equal(t, 11, second.DesireSize)
}

func TestApply_ClampedNoOpRejected(t *testing.T) {
	spec := testSpec()
	spec.MinSize = 10
	spec.MaxSize = 10
	r := rule.New(spec, clockwork.NewFakeClock())

	// idle(15) < minIdle(5) is false, so this exercises the ScaleDown branch:
	// idle(15) > maxIdle(10) -> target = total(10) - 5 = 5, clamped to
	// minSize(10) == total, so no decision should be emitted.
	got := r.Apply(usage(15, 10))
	assert.Nil(t, got)
}

func TestApply_ZeroCooldownPermitsImmediateReevaluation(t *testing.T) {
	r := rule.New(testSpec(), clockwork.NewFakeClock())

	first := r.Apply(usage(4, 10))
	require.NotNil(t, first)

	second := r.Apply(usage(4, 10))
	require.NotNil(t, second, "zero cooldown permits immediate re-evaluation")
	assert.Equal(t, models.ScaleUp, second.Type)
}
