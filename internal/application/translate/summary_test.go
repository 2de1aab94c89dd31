package translate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPickSummaryFirstSentence(t *testing.T) {
	got := pickSummary([]string{"소비대차는 당사자 일방이 약정한다. 상대방은 반환을 약정한다."})
	assert.Equal(t, "소비대차는 당사자 일방이 약정한다", got)
}

func TestPickSummarySkipsEmptyContents(t *testing.T) {
	got := pickSummary([]string{"", "   ", "보험금 청구권은 3년간 행사하지 아니하면 소멸한다。추가 설명"})
	assert.Equal(t, "보험금 청구권은 3년간 행사하지 아니하면 소멸한다", got)
}

func TestPickSummaryNewlinesCollapse(t *testing.T) {
	got := pickSummary([]string{"첫째 줄\n둘째 줄"})
	assert.Equal(t, "첫째 줄 둘째 줄", got)
}

func TestPickSummaryDelimiterOrder(t *testing.T) {
	// ". " is tried before "…" even when "…" appears earlier in the text.
	got := pickSummary([]string{"가…나. 다"})
	assert.Equal(t, "가…나", got)
}

func TestPickSummaryLengthCap(t *testing.T) {
	long := strings.Repeat("가", 200)
	got := pickSummary([]string{long})
	assert.Equal(t, summaryLimit, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestPickSummaryNoContent(t *testing.T) {
	assert.Equal(t, "", pickSummary(nil))
	assert.Equal(t, "", pickSummary([]string{"", "\n"}))
}
