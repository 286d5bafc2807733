package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KingPinFPV/basarometer-sub000/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:     "abc12345-6789-0000-0000-000000000000",
			Status: model.RunStatusDone,
			Result: &model.ReconcileResult{
				Products: make([]model.EnrichedRecord, 42),
				Quality:  model.QualityReport{AvgConfidence: 0.812},
			},
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Minute),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Status:    model.RunStatusVerifying,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-30 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "done")
	assert.Contains(t, output, "42")
	assert.Contains(t, output, "0.812")
	assert.Contains(t, output, "verifying")
	assert.Contains(t, output, "2m0s")
}

func TestComputeRunStats(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			Status:    model.RunStatusDone,
			Result:    &model.ReconcileResult{Quality: model.QualityReport{AvgConfidence: 0.8}},
			CreatedAt: now,
			UpdatedAt: now.Add(30 * time.Second),
		},
		{
			Status:    model.RunStatusDone,
			Result:    &model.ReconcileResult{Quality: model.QualityReport{AvgConfidence: 0.6}},
			CreatedAt: now,
			UpdatedAt: now.Add(90 * time.Second),
		},
		{Status: model.RunStatusFailed, CreatedAt: now, UpdatedAt: now},
		{Status: model.RunStatusVerifying, CreatedAt: now, UpdatedAt: now},
	}

	s := computeRunStats(runs)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Done)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Other)
	assert.InDelta(t, 60.0, s.AvgDurSecs, 0.001)
	assert.InDelta(t, 0.7, s.AvgConf, 0.001)
}

func TestComputeRunStats_Empty(t *testing.T) {
	s := computeRunStats(nil)
	assert.Equal(t, 0, s.Total)
	assert.Zero(t, s.AvgDurSecs)
	assert.Zero(t, s.AvgConf)
}
