package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualifiedName_RoundTrip(t *testing.T) {
	cases := []struct{ class, method string }{
		{"TodoStore", "addTodo"},
		{"AiClickService", "clickOn"},
		{"_private", "x"},
		{"Class_With_Underscores", "method__two"},
		{"", "orphan"},
	}
	for _, tc := range cases {
		name := QualifiedName(tc.class, tc.method)
		class, method := SplitQualifiedName(name)
		assert.Equal(t, tc.class, class, name)
		assert.Equal(t, tc.method, method, name)
	}
}

func TestSplitQualifiedName_NoSeparator(t *testing.T) {
	class, method := SplitQualifiedName("lonely")
	assert.Equal(t, "lonely", class)
	assert.Empty(t, method)
}
