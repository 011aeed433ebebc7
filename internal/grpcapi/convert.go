package grpcapi

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

// ── Access ───────────────────────────────────────────────────────────────────

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue, nil
	case *structpb.Value_NullValue:
		return "", nil
	}
	return "", fmt.Errorf("field %q must be a string", name)
}

func accessRequestFromStruct(s *structpb.Struct) (types.AccessRequest, error) {
	var (
		req types.AccessRequest
		err error
	)
	if req.PersonID, err = stringField(s, "person_id"); err != nil {
		return req, err
	}
	if req.DocumentID, err = stringField(s, "document_id"); err != nil {
		return req, err
	}
	if req.TerminalID, err = stringField(s, "terminal_id"); err != nil {
		return req, err
	}
	if req.Timestamp, err = stringField(s, "timestamp"); err != nil {
		return req, err
	}
	return req, nil
}

func accessRequestToStruct(req types.AccessRequest) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"terminal_id": structpb.NewStringValue(req.TerminalID),
	}
	if req.PersonID != "" {
		fields["person_id"] = structpb.NewStringValue(req.PersonID)
	}
	if req.DocumentID != "" {
		fields["document_id"] = structpb.NewStringValue(req.DocumentID)
	}
	if req.Timestamp != "" {
		fields["timestamp"] = structpb.NewStringValue(req.Timestamp)
	}
	return &structpb.Struct{Fields: fields}
}

func accessResponseToStruct(r types.AccessResponse) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"allowed":     structpb.NewBoolValue(r.Allowed),
		"reason":      structpb.NewStringValue(string(r.Reason)),
		"entry_id":    structpb.NewStringValue(r.EntryID),
		"person_id":   structpb.NewStringValue(r.PersonID),
		"terminal_id": structpb.NewStringValue(r.TerminalID),
		"decided_at":  structpb.NewStringValue(r.DecidedAt),
	}}
}

func accessResponseFromStruct(s *structpb.Struct) types.AccessResponse {
	f := s.GetFields()
	return types.AccessResponse{
		Allowed:    f["allowed"].GetBoolValue(),
		Reason:     types.Reason(f["reason"].GetStringValue()),
		EntryID:    f["entry_id"].GetStringValue(),
		PersonID:   f["person_id"].GetStringValue(),
		TerminalID: f["terminal_id"].GetStringValue(),
		DecidedAt:  f["decided_at"].GetStringValue(),
	}
}
