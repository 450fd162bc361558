package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitPipelineBasic(t *testing.T) {
	got := splitPipeline([]string{"!", "cut", "-f1", "!", "uniq", "-c"})
	want := [][]string{{"cut", "-f1"}, {"uniq", "-c"}}
	require.Equal(t, want, got)
}

func TestSplitPipelineSingleStage(t *testing.T) {
	got := splitPipeline([]string{"!", "cat"})
	require.Equal(t, [][]string{{"cat"}}, got)
}

func TestSplitPipelineEmpty(t *testing.T) {
	got := splitPipeline(nil)
	require.Empty(t, got)
}

func TestSplitPipelineDropsEmptyLeadingSegment(t *testing.T) {
	got := splitPipeline([]string{"!", "!", "cat"})
	require.Equal(t, [][]string{{"cat"}}, got)
}
