package bridge

import "testing"

func TestNewRequest_GeneratesActionID(t *testing.T) {
	first := NewRequest(RequestConfig{Method: "share"})
	second := NewRequest(RequestConfig{Method: "share"})

	if first.ActionID == "" {
		t.Fatal("ActionID should be generated when absent")
	}
	if first.ActionID == second.ActionID {
		t.Error("generated ActionIDs must be unique per request")
	}
}

func TestNewRequest_KeepsExplicitActionID(t *testing.T) {
	req := NewRequest(RequestConfig{ActionID: "caller-supplied", Method: "share"})
	if req.ActionID != "caller-supplied" {
		t.Errorf("ActionID = %q, want caller-supplied", req.ActionID)
	}
}

func TestNewRequest_CopiesConfig(t *testing.T) {
	cfg := RequestConfig{
		Method:   "share",
		Version:  "20210101",
		Scheme:   "fbapi",
		Params:   map[string]any{"k": "v"},
		UserInfo: map[string]any{"caller": "test"},
	}
	req := NewRequest(cfg)

	if req.Method != "share" || req.Version != "20210101" || req.Scheme != "fbapi" {
		t.Errorf("request fields = %+v, want config values", req)
	}
	if req.Params["k"] != "v" {
		t.Error("Params not carried over")
	}
	if req.UserInfo["caller"] != "test" {
		t.Error("UserInfo not carried over")
	}
}
