package mocks

import "context"

// AnalyzerMock is a func-field test double for the AI boundary.
type AnalyzerMock struct {
	AnalyzeImageFunc func(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

func (m *AnalyzerMock) AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if m.AnalyzeImageFunc != nil {
		return m.AnalyzeImageFunc(ctx, image, mimeType, prompt)
	}
	return "", nil
}
