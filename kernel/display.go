package kernel

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// MIME type constants for the display helpers below, ported from the
// teacher's display.go.
const (
	MIMETypeHTML       = "text/html"
	MIMETypeJavaScript = "application/javascript"
	MIMETypeJPEG       = "image/jpeg"
	MIMETypeJSON       = "application/json"
	MIMETypeLatex      = "text/latex"
	MIMETypeMarkdown   = "text/markdown"
	MIMETypePNG        = "image/png"
	MIMETypePDF        = "application/pdf"
	MIMETypeSVG        = "image/svg+xml"
	MIMETypeText       = "text/plain"
)

// MIMEMap holds MIME-type-keyed representations of a single value.
type MIMEMap map[string]interface{}

// Data is what a value renders to for display_data/execute_result
// messages: one or more MIME representations plus optional metadata.
type Data struct {
	Data      MIMEMap
	Metadata  MIMEMap
	Transient MIMEMap
}

func ensureMIMEMap(m MIMEMap) MIMEMap {
	if m == nil {
		return MIMEMap{}
	}
	return m
}

// autoRenderResult picks the first value in vals that is already a
// Data (a library calling Any/MakeData/HTML/... directly); if none is
// found it falls back to rendering the values as plain text, matching
// the teacher's autoRenderResults but without silently dropping
// non-Data results the way the teacher's zero-value fallback did.
func autoRenderResult(vals []interface{}) Data {
	for _, val := range vals {
		if d, ok := val.(Data); ok {
			return d
		}
	}
	if len(vals) == 0 {
		return Data{}
	}
	return MakeData(MIMETypeText, anyToString(vals...))
}

func anyToString(vals ...interface{}) string {
	var buf strings.Builder
	for i, val := range vals {
		if i != 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprint(&buf, val)
	}
	return buf.String()
}

func fillDefaults(data Data, arg interface{}, s string, b []byte, mimeType string) Data {
	if data.Data == nil {
		data.Data = MIMEMap{}
	}
	if len(s) != 0 && len(mimeType) != 0 {
		data.Data[mimeType] = s
	}
	if _, ok := data.Data[MIMETypeText]; !ok {
		if len(s) == 0 {
			s = fmt.Sprint(arg)
		}
		data.Data[MIMETypeText] = s
	}
	if len(b) != 0 {
		if len(mimeType) == 0 {
			mimeType = http.DetectContentType(b)
		}
		if len(mimeType) != 0 && mimeType != MIMETypeText {
			data.Data[mimeType] = b
		}
	}
	return data
}

// Any renders arg under the given MIME type, auto-detecting content
// for []byte/io.Reader/io.WriterTo when mimeType is empty.
func Any(mimeType string, arg interface{}) Data {
	if d, ok := arg.(Data); ok {
		return d
	}
	var s string
	var b []byte
	switch v := arg.(type) {
	case string:
		s = v
	case []byte:
		b = v
	case io.Reader:
		b, _ = io.ReadAll(v)
	case io.WriterTo:
		var buf bytes.Buffer
		_, _ = v.WriteTo(&buf)
		b = buf.Bytes()
	default:
		s = fmt.Sprint(v)
	}
	return fillDefaults(Data{}, arg, s, b, mimeType)
}

// Auto is Any with MIME type auto-detection.
func Auto(data interface{}) Data { return Any("", data) }

// MakeData builds a single-representation Data value.
func MakeData(mimeType string, data interface{}) Data {
	d := Data{Data: MIMEMap{mimeType: data}}
	if mimeType != MIMETypeText {
		d.Data[MIMETypeText] = fmt.Sprint(data)
	}
	return d
}

// MakeData3 builds a Data value with an explicit plain-text fallback.
func MakeData3(mimeType, plainText string, data interface{}) Data {
	return Data{Data: MIMEMap{MIMETypeText: plainText, mimeType: data}}
}

// File reads path and renders its contents under mimeType.
func File(mimeType, path string) (Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return Any(mimeType, b), nil
}

func HTML(html string) Data             { return MakeData(MIMETypeHTML, html) }
func JavaScript(js string) Data         { return MakeData(MIMETypeJavaScript, js) }
func JPEG(jpeg []byte) Data             { return MakeData(MIMETypeJPEG, jpeg) }
func JSON(v map[string]interface{}) Data { return MakeData(MIMETypeJSON, v) }
func Markdown(md string) Data           { return MakeData(MIMETypeMarkdown, md) }
func PDF(pdf []byte) Data               { return MakeData(MIMETypePDF, pdf) }
func PNG(png []byte) Data               { return MakeData(MIMETypePNG, png) }
func SVG(svg string) Data               { return MakeData(MIMETypeSVG, svg) }

func Latex(latex string) Data {
	return MakeData3(MIMETypeLatex, latex, "$"+strings.Trim(latex, "$")+"$")
}

func Math(latex string) Data {
	return MakeData3(MIMETypeLatex, latex, "$$"+strings.Trim(latex, "$")+"$$")
}

// MIME builds a Data value directly from caller-supplied MIME maps.
func MIME(data, metadata MIMEMap) Data {
	return Data{Data: data, Metadata: metadata}
}
