package core

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{ errs []string }

func (l *nopLogger) Debug(string, ...interface{}) {}
func (l *nopLogger) Info(string, ...interface{})  {}
func (l *nopLogger) Warn(string, ...interface{})  {}
func (l *nopLogger) Error(msg string, _ ...interface{}) {
	l.errs = append(l.errs, msg)
}
func (l *nopLogger) Fatal(string, ...interface{}) {}

func TestEmailMessage_Render(t *testing.T) {
	logger := new(nopLogger)
	ParseEmailTemplates(logger)
	require.Empty(t, logger.errs)

	conf := &Config{AppName: "Classroom", FrontendBaseURL: "https://classroom.test"}

	t.Run("plain body", func(t *testing.T) {
		msg := &EmailMessage{To: []mail.Address{{Address: "s@test.cd"}}, Subject: "hi", BodyStr: "hello"}
		require.NoError(t, msg.Render(conf))
		assert.Equal(t, "hello", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
		assert.True(t, msg.HasContent())
	})

	t.Run("template", func(t *testing.T) {
		msg := &EmailMessage{
			To:           []mail.Address{{Address: "s@test.cd"}},
			TemplateName: "submission_graded",
			TemplateData: map[string]interface{}{
				"Username":        "stud",
				"AssignmentID":    3,
				"AssignmentTitle": "Essay",
				"Score":           95,
				"Points":          100,
				"Lines": []map[string]interface{}{
					{"Title": "A", "Awarded": 55, "MaxPoints": 60},
				},
			},
		}
		require.NoError(t, msg.Render(conf))
		assert.Contains(t, msg.TextContent, `"Essay" has been graded: 95/100`)
		assert.Contains(t, msg.TextContent, "- A: 55/60")
		assert.Contains(t, msg.HTMLContent, "https://classroom.test/assignments/3")
	})

	t.Run("missing template data", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "submission_graded", TemplateData: map[string]interface{}{}}
		assert.Error(t, msg.Render(conf))
	})
}
