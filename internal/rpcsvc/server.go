package rpcsvc

import (
	stdcontext "context"

	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/cicore/kernel/internal/config"
	"github.com/cicore/kernel/internal/context"
	"github.com/cicore/kernel/internal/normalize"
	"github.com/cicore/kernel/internal/typecheck"
)

// Server answers Infer/Check/Normalize calls against a fixed context and
// configuration. Grounded on the teacher's FunxyGrpcHandler: one small
// struct implementing unary handlers by hand, registered via a
// hand-assembled grpc.ServiceDesc rather than protoc-gen-go-grpc stubs.
type Server struct {
	ctx   *context.Context
	cfg   config.Config
	codec *codec
}

// NewServer builds a Server answering queries against ctx under cfg.
func NewServer(ctx *context.Context, cfg config.Config) (*Server, error) {
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	return &Server{ctx: ctx, cfg: cfg, codec: c}, nil
}

// ServiceDesc returns the hand-built grpc.ServiceDesc for KernelService,
// for use with grpc.Server.RegisterService(desc, srv).
func ServiceDesc() *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: "cickernel.KernelService",
		HandlerType: (*interface{})(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Infer", Handler: inferHandler},
			{MethodName: "Check", Handler: checkHandler},
			{MethodName: "Normalize", Handler: normalizeHandler},
		},
		Metadata: protoFileName,
	}
}

func inferHandler(srv interface{}, ctx stdcontext.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	s := srv.(*Server)
	req := dynamic.NewMessage(s.codec.inferReqMd)
	if err := dec(req); err != nil {
		return nil, err
	}
	resp := dynamic.NewMessage(s.codec.inferRespMd)

	termMsg, ok := getField(req, s.codec.inferReqMd, "term").(*dynamic.Message)
	if !ok {
		setField(resp, s.codec.inferRespMd, "error", "missing term")
		return resp, nil
	}
	t, err := s.codec.msgToTerm(termMsg)
	if err != nil {
		setField(resp, s.codec.inferRespMd, "error", err.Error())
		return resp, nil
	}
	ty, err := typecheck.Infer(s.ctx, s.cfg, t)
	if err != nil {
		setField(resp, s.codec.inferRespMd, "error", err.Error())
		return resp, nil
	}
	tyMsg, err := s.codec.termToMsg(ty)
	if err != nil {
		setField(resp, s.codec.inferRespMd, "error", err.Error())
		return resp, nil
	}
	setField(resp, s.codec.inferRespMd, "ty", tyMsg)
	return resp, nil
}

func checkHandler(srv interface{}, ctx stdcontext.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	s := srv.(*Server)
	req := dynamic.NewMessage(s.codec.checkReqMd)
	if err := dec(req); err != nil {
		return nil, err
	}
	resp := dynamic.NewMessage(s.codec.checkRespMd)

	termMsg, ok1 := getField(req, s.codec.checkReqMd, "term").(*dynamic.Message)
	expectedMsg, ok2 := getField(req, s.codec.checkReqMd, "expected").(*dynamic.Message)
	if !ok1 || !ok2 {
		setField(resp, s.codec.checkRespMd, "error", "missing term or expected")
		return resp, nil
	}
	t, err := s.codec.msgToTerm(termMsg)
	if err != nil {
		setField(resp, s.codec.checkRespMd, "error", err.Error())
		return resp, nil
	}
	expected, err := s.codec.msgToTerm(expectedMsg)
	if err != nil {
		setField(resp, s.codec.checkRespMd, "error", err.Error())
		return resp, nil
	}
	if err := typecheck.Check(s.ctx, s.cfg, t, expected); err != nil {
		setField(resp, s.codec.checkRespMd, "error", err.Error())
		return resp, nil
	}
	setField(resp, s.codec.checkRespMd, "ok", true)
	return resp, nil
}

func normalizeHandler(srv interface{}, ctx stdcontext.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	s := srv.(*Server)
	req := dynamic.NewMessage(s.codec.normReqMd)
	if err := dec(req); err != nil {
		return nil, err
	}
	resp := dynamic.NewMessage(s.codec.normRespMd)

	termMsg, ok := getField(req, s.codec.normReqMd, "term").(*dynamic.Message)
	if !ok {
		setField(resp, s.codec.normRespMd, "error", "missing term")
		return resp, nil
	}
	t, err := s.codec.msgToTerm(termMsg)
	if err != nil {
		setField(resp, s.codec.normRespMd, "error", err.Error())
		return resp, nil
	}
	strategy := normalize.CBV
	if whnf, _ := getField(req, s.codec.normReqMd, "whnf").(bool); whnf {
		strategy = normalize.WHNF
	}
	result, err := normalize.Normalize(s.ctx, t, strategy, s.cfg.DefaultFuel)
	if err != nil {
		setField(resp, s.codec.normRespMd, "error", err.Error())
		return resp, nil
	}
	resultMsg, err := s.codec.termToMsg(result)
	if err != nil {
		setField(resp, s.codec.normRespMd, "error", err.Error())
		return resp, nil
	}
	setField(resp, s.codec.normRespMd, "result", resultMsg)
	return resp, nil
}

// Register attaches the KernelService to gs, backed by s.
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(ServiceDesc(), s)
}
