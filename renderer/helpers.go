package renderer

import (
	"strings"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w *strings.Builder, block func(*strings.Builder) bool) {
	var bw strings.Builder
	if block(&bw) {
		w.WriteString(bw.String())
	}
}
