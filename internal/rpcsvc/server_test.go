package rpcsvc

import (
	stdcontext "context"
	"testing"

	"github.com/jhump/protoreflect/dynamic"

	"github.com/cicore/kernel/internal/alpha"
	"github.com/cicore/kernel/internal/config"
	"github.com/cicore/kernel/internal/context"
	"github.com/cicore/kernel/internal/inductive"
	"github.com/cicore/kernel/internal/term"
)

func natServer(t *testing.T) *Server {
	t.Helper()
	reg := inductive.New()
	if err := reg.Declare("nat", nil, &term.Sort{Kind: term.TypeUniverse, Level: 0}); err != nil {
		t.Fatalf("declare nat: %v", err)
	}
	natTy := &term.IndRef{Name: "nat"}
	if err := reg.AddConstructor("nat", "O", natTy, false); err != nil {
		t.Fatalf("add O: %v", err)
	}
	if err := reg.AddConstructor("nat", "S", &term.Product{Var: "n", VarTy: natTy, ResultTy: natTy}, false); err != nil {
		t.Fatalf("add S: %v", err)
	}
	s, err := NewServer(context.New(reg), config.Default())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

// decodeFrom mimics the grpc transport handing the handler its already
// received request bytes.
func decodeFrom(t *testing.T, req *dynamic.Message) func(interface{}) error {
	t.Helper()
	raw, err := req.Marshal()
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return func(v interface{}) error {
		return v.(*dynamic.Message).Unmarshal(raw)
	}
}

func TestInferHandlerAnswersWithType(t *testing.T) {
	s := natServer(t)

	termMsg, err := s.codec.termToMsg(&term.ConRef{Ind: "nat", Con: "O"})
	if err != nil {
		t.Fatalf("termToMsg: %v", err)
	}
	req := dynamic.NewMessage(s.codec.inferReqMd)
	setField(req, s.codec.inferReqMd, "term", termMsg)

	respI, err := inferHandler(s, stdcontext.Background(), decodeFrom(t, req), nil)
	if err != nil {
		t.Fatalf("inferHandler: %v", err)
	}
	resp := respI.(*dynamic.Message)
	if errStr, _ := getField(resp, s.codec.inferRespMd, "error").(string); errStr != "" {
		t.Fatalf("InferResponse.error = %q, want empty", errStr)
	}
	tyMsg, ok := getField(resp, s.codec.inferRespMd, "ty").(*dynamic.Message)
	if !ok {
		t.Fatal("InferResponse.ty missing")
	}
	ty, err := s.codec.msgToTerm(tyMsg)
	if err != nil {
		t.Fatalf("msgToTerm(ty): %v", err)
	}
	if !alpha.Equal(ty, &term.IndRef{Name: "nat"}) {
		t.Fatalf("Infer(nat::O) over the wire = %s, want %%nat", term.Print(ty))
	}
}

func TestCheckHandlerReportsMismatchInBand(t *testing.T) {
	s := natServer(t)

	termMsg, err := s.codec.termToMsg(&term.Sort{Kind: term.Prop})
	if err != nil {
		t.Fatalf("termToMsg(term): %v", err)
	}
	expectedMsg, err := s.codec.termToMsg(&term.IndRef{Name: "nat"})
	if err != nil {
		t.Fatalf("termToMsg(expected): %v", err)
	}
	req := dynamic.NewMessage(s.codec.checkReqMd)
	setField(req, s.codec.checkReqMd, "term", termMsg)
	setField(req, s.codec.checkReqMd, "expected", expectedMsg)

	respI, err := checkHandler(s, stdcontext.Background(), decodeFrom(t, req), nil)
	if err != nil {
		t.Fatalf("checkHandler: %v", err)
	}
	resp := respI.(*dynamic.Message)
	if ok, _ := getField(resp, s.codec.checkRespMd, "ok").(bool); ok {
		t.Fatal("CheckResponse.ok = true, want a mismatch reported in-band")
	}
	if errStr, _ := getField(resp, s.codec.checkRespMd, "error").(string); errStr == "" {
		t.Fatal("CheckResponse.error empty, want the mismatch rendered")
	}
}

func TestNormalizeHandlerReducesBetaRedex(t *testing.T) {
	s := natServer(t)

	natTy := &term.IndRef{Name: "nat"}
	redex := &term.App{
		Fn:  &term.Lambda{Var: "x", VarTy: natTy, Body: &term.Var{Name: "x"}},
		Arg: &term.ConRef{Ind: "nat", Con: "O"},
	}
	termMsg, err := s.codec.termToMsg(redex)
	if err != nil {
		t.Fatalf("termToMsg: %v", err)
	}
	req := dynamic.NewMessage(s.codec.normReqMd)
	setField(req, s.codec.normReqMd, "term", termMsg)

	respI, err := normalizeHandler(s, stdcontext.Background(), decodeFrom(t, req), nil)
	if err != nil {
		t.Fatalf("normalizeHandler: %v", err)
	}
	resp := respI.(*dynamic.Message)
	resultMsg, ok := getField(resp, s.codec.normRespMd, "result").(*dynamic.Message)
	if !ok {
		t.Fatal("NormalizeResponse.result missing")
	}
	result, err := s.codec.msgToTerm(resultMsg)
	if err != nil {
		t.Fatalf("msgToTerm(result): %v", err)
	}
	if !alpha.Equal(result, &term.ConRef{Ind: "nat", Con: "O"}) {
		t.Fatalf("Normalize over the wire = %s, want nat::O", term.Print(result))
	}
}
