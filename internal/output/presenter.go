package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gmn-tools/rmsmonitor/internal/errors"
	"github.com/gmn-tools/rmsmonitor/internal/status"
	"gopkg.in/yaml.v3"
)

// Presenter shows a classified report.
type Presenter interface {
	Present(ctx context.Context, report status.Report) error
}

// Envelope wraps machine-readable output so success and failure share one
// shape.
type Envelope struct {
	Success bool         `json:"success" yaml:"success"`
	Data    interface{}  `json:"data,omitempty" yaml:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty" yaml:"error,omitempty"`
}

// ErrorDetail is the machine-readable form of a failure.
type ErrorDetail struct {
	Code       string `json:"code" yaml:"code"`
	Message    string `json:"message" yaml:"message"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// ReportDocument is the data written for a report.
type ReportDocument struct {
	status.Report `yaml:",inline"`
	Counts        map[status.Severity]int `json:"counts" yaml:"counts"`
}

// EncodingPresenter writes the report as JSON or YAML.
type EncodingPresenter struct {
	Out    io.Writer
	Format Mode
}

// Present implements Presenter.
func (p *EncodingPresenter) Present(_ context.Context, report status.Report) error {
	doc := ReportDocument{Report: report, Counts: report.Counts()}
	if err := WriteEnvelope(p.Out, p.Format, Envelope{Success: true, Data: doc}); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			fmt.Sprintf("Failed to write %s output", p.Format),
			"Check that stdout is writable.")
	}
	return nil
}

// WriteError writes err as a failed envelope.
func WriteError(w io.Writer, format Mode, err error) error {
	detail := &ErrorDetail{Code: errors.ErrExec, Message: err.Error()}
	if se, ok := err.(*errors.Error); ok {
		detail.Code = se.Code
		detail.Message = se.Message
		if se.Cause != nil {
			detail.Message += ": " + se.Cause.Error()
		}
		detail.Suggestion = se.Suggestion
	}
	return WriteEnvelope(w, format, Envelope{Success: false, Error: detail})
}

// WriteEnvelope encodes env in format. Anything other than YAML is written as
// indented JSON.
func WriteEnvelope(w io.Writer, format Mode, env Envelope) error {
	if format == ModeYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(env); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
