package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/core-coin/cipctl/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func dateAgo(d time.Duration) string {
	return ref.Add(-d).Format(time.RFC3339Nano)
}

func metaWith(date string, tags []string, status string) *document.Metadata {
	meta := document.NewMetadata()
	if date != "" {
		meta.SetString(DateKey, date)
	}
	if tags != nil {
		meta.SetStrings(TagsKey, tags)
	}
	if status != "" {
		meta.SetString(StatusKey, status)
	}
	return meta
}

func TestStatusForAge(t *testing.T) {
	tests := []struct {
		days float64
		want Status
	}{
		{0, StatusDraft},
		{-3, StatusDraft},
		{13.999999, StatusDraft},
		{14, StatusLastCall},
		{27.5, StatusLastCall},
		{28, StatusAccepted},
		{41.99, StatusAccepted},
		{42, StatusFinal},
		{365, StatusFinal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForAge(tt.days), "age %v", tt.days)
	}
}

func TestClassify_Boundaries(t *testing.T) {
	c := NewClassifier(StatusFieldStrategy{})

	tests := []struct {
		name string
		age  time.Duration
		want Status
	}{
		{"just under two weeks", 14*day - time.Millisecond, StatusDraft},
		{"exactly two weeks", 14 * day, StatusLastCall},
		{"exactly four weeks", 28 * day, StatusAccepted},
		{"exactly six weeks", 42 * day, StatusFinal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Classify(metaWith(dateAgo(tt.age), nil, ""), ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Status)
		})
	}
}

func TestClassify_StatusField(t *testing.T) {
	c := NewClassifier(StatusFieldStrategy{})

	t.Run("young draft stays draft", func(t *testing.T) {
		res, err := c.Classify(metaWith(dateAgo(10*day), nil, "draft"), ref)
		require.NoError(t, err)
		assert.False(t, res.Changed)
		assert.Equal(t, StatusDraft, res.Status)
	})

	t.Run("draft moves to last call", func(t *testing.T) {
		meta := metaWith(dateAgo(15*day), nil, "draft")
		res, err := c.Classify(meta, ref)
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.Equal(t, StatusDraft, res.Previous)

		status, _ := res.Metadata.String(StatusKey)
		assert.Equal(t, "last call", status)

		original, _ := meta.String(StatusKey)
		assert.Equal(t, "draft", original, "input metadata must not be modified")
	})

	t.Run("missing status is added", func(t *testing.T) {
		res, err := c.Classify(metaWith(dateAgo(30*day), nil, ""), ref)
		require.NoError(t, err)
		assert.True(t, res.Changed)
		status, _ := res.Metadata.String(StatusKey)
		assert.Equal(t, "accepted", status)
	})
}

func TestClassify_Tags(t *testing.T) {
	c := NewClassifier(nil)

	t.Run("lifecycle token replaced, other tags kept in order", func(t *testing.T) {
		res, err := c.Classify(metaWith(dateAgo(50*day), []string{"draft", "core"}, ""), ref)
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.Equal(t, []string{"core", "final"}, res.Metadata.Strings(TagsKey))
	})

	t.Run("token already present", func(t *testing.T) {
		res, err := c.Classify(metaWith(dateAgo(20*day), []string{"core", "last call"}, ""), ref)
		require.NoError(t, err)
		assert.False(t, res.Changed)
	})

	t.Run("missing tags", func(t *testing.T) {
		res, err := c.Classify(metaWith(dateAgo(day), nil, ""), ref)
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.Equal(t, []string{"draft"}, res.Metadata.Strings(TagsKey))
	})

	t.Run("status field untouched", func(t *testing.T) {
		res, err := c.Classify(metaWith(dateAgo(50*day), []string{"draft"}, "draft"), ref)
		require.NoError(t, err)
		status, _ := res.Metadata.String(StatusKey)
		assert.Equal(t, "draft", status)
	})
}

func TestClassify_Idempotent(t *testing.T) {
	for _, strategy := range []Strategy{TagsStrategy{}, StatusFieldStrategy{}} {
		t.Run(strategy.Name(), func(t *testing.T) {
			c := NewClassifier(strategy)
			for _, age := range []time.Duration{day, 15 * day, 30 * day, 60 * day} {
				first, err := c.Classify(metaWith(dateAgo(age), []string{"draft", "core"}, "draft"), ref)
				require.NoError(t, err)

				second, err := c.Classify(first.Metadata, ref)
				require.NoError(t, err)
				assert.False(t, second.Changed, "age %v", age)
			}
		})
	}
}

func TestClassify_Regression(t *testing.T) {
	c := NewClassifier(StatusFieldStrategy{})

	res, err := c.Classify(metaWith(dateAgo(5*day), nil, "final"), ref)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, res.Regressed)
	assert.Equal(t, StatusDraft, res.Status)
	assert.Equal(t, StatusFinal, res.Previous)
}

func TestClassify_Errors(t *testing.T) {
	c := NewClassifier(nil)

	_, err := c.Classify(metaWith("", []string{"core"}, ""), ref)
	assert.True(t, errors.Is(err, ErrMissingDate))

	_, err = c.Classify(metaWith("not a date", nil, ""), ref)
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-01-02T10:30:00Z", time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)},
		{"2024-01-02T10:30:00.250Z", time.Date(2024, 1, 2, 10, 30, 0, 250_000_000, time.UTC)},
		{"2024-01-02T10:30", time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)},
		{"2024-01-02 10:30", time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)},
		{"2024/01/02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseDate("   ")
	assert.True(t, errors.Is(err, ErrMissingDate))
}

func TestAgeInDays(t *testing.T) {
	created := ref.Add(-36 * time.Hour)
	assert.InDelta(t, 1.5, AgeInDays(created, ref), 1e-9)
}

func TestStrategyByName(t *testing.T) {
	s, err := StrategyByName("tags")
	require.NoError(t, err)
	assert.Equal(t, StrategyTags, s.Name())

	s, err = StrategyByName("status")
	require.NoError(t, err)
	assert.Equal(t, StrategyStatus, s.Name())

	_, err = StrategyByName("both")
	assert.Error(t, err)
}

func TestTagsStrategy_Current(t *testing.T) {
	meta := metaWith("", []string{"core", "draft", "meta"}, "")
	st, ok := TagsStrategy{}.Current(meta)
	assert.True(t, ok)
	assert.Equal(t, StatusDraft, st)

	_, ok = TagsStrategy{}.Current(metaWith("", []string{"core"}, ""))
	assert.False(t, ok)
}
