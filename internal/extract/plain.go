package extract

import (
	"context"
	"fmt"
)

// Plain passes text files through with a type header.
type Plain struct{}

func (e *Plain) Extract(ctx context.Context, data []byte, filename string) Result {
	return textResult(fmt.Sprintf("TEXT DOCUMENT:\n%s", string(data)))
}
