package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"

	"github.com/graphkit/graphkit/graph"
)

// accessTokenParam carries the credential's token on the wire.
const accessTokenParam = "access_token"

// encodeQuery renders the request parameters as URL query values. Binary
// payloads are rejected here; they require multipart encoding.
func encodeQuery(req *graph.Request) (url.Values, error) {
	values := url.Values{}
	for _, p := range req.Params() {
		switch v := p.Value.(type) {
		case string:
			values.Set(p.Key, v)
		case graph.Attachment, *graph.Attachment, []byte, io.Reader:
			return nil, fmt.Errorf("transport: parameter %q is binary; query encoding cannot carry it", p.Key)
		default:
			data, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("transport: encoding parameter %q: %w", p.Key, err)
			}
			values.Set(p.Key, string(data))
		}
	}
	if cred := req.Credential(); cred != nil && !req.Flags().Has(graph.FlagSkipCredential) {
		values.Set(accessTokenParam, cred.Token)
	}
	return values, nil
}

// encodeMultipart renders the request parameters as a multipart body,
// returning the body and its content type.
func encodeMultipart(req *graph.Request) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, p := range req.Params() {
		if err := writeMultipartParam(writer, p); err != nil {
			return nil, "", err
		}
	}
	if cred := req.Credential(); cred != nil && !req.Flags().Has(graph.FlagSkipCredential) {
		if err := writer.WriteField(accessTokenParam, cred.Token); err != nil {
			return nil, "", fmt.Errorf("transport: writing access token field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("transport: finalizing multipart body: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

func writeMultipartParam(writer *multipart.Writer, p graph.Param) error {
	switch v := p.Value.(type) {
	case string:
		return writer.WriteField(p.Key, v)

	case graph.Attachment:
		return writeAttachment(writer, p.Key, &v)

	case *graph.Attachment:
		return writeAttachment(writer, p.Key, v)

	case []byte:
		part, err := writer.CreateFormFile(p.Key, p.Key)
		if err != nil {
			return fmt.Errorf("transport: creating part %q: %w", p.Key, err)
		}
		_, err = part.Write(v)
		return err

	case io.Reader:
		part, err := writer.CreateFormFile(p.Key, p.Key)
		if err != nil {
			return fmt.Errorf("transport: creating part %q: %w", p.Key, err)
		}
		_, err = io.Copy(part, v)
		return err

	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("transport: encoding parameter %q: %w", p.Key, err)
		}
		return writer.WriteField(p.Key, string(data))
	}
}

func writeAttachment(writer *multipart.Writer, key string, att *graph.Attachment) error {
	filename := att.Filename
	if filename == "" {
		filename = key
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, key, filename))
	if att.ContentType != "" {
		header.Set("Content-Type", att.ContentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("transport: creating part %q: %w", key, err)
	}
	_, err = part.Write(att.Data)
	return err
}
