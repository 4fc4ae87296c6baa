// Package rpcsvc exposes Infer, Check, and Normalize as a gRPC service
// over a runtime-compiled proto schema, grounded on the teacher's
// internal/evaluator/builtins_grpc.go (jhump/protoreflect's protoparse to
// build a FileDescriptor from source text at runtime, dynamic.Message in
// place of protoc-generated structs, and a hand-built grpc.ServiceDesc
// whose Handler closures dispatch to a small per-call object) — inverted
// here from the teacher's client/host-plugin role into a server exposing
// the kernel itself, since spec.md's kernel has no host language to call
// out to.
//
// Only the term shapes a client plausibly needs to construct by hand are
// wire-exposed: Var, Sort, Product, Lambda, App, IndRef, ConRef, and
// Hole. Annot and Axiom have no wire form either. Match and Fix are
// deliberately absent from TermMsg — they are
// unwieldy to build field-by-field over RPC and are exercised through the
// Go API (pkg/kernel) instead; this is a convenience-layer limitation, not
// a kernel one.
package rpcsvc

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

const protoSource = `
syntax = "proto3";
package cickernel;

message SortMsg {
  bool prop = 1;
  int32 level = 2;
}

message ProductMsg {
  string var = 1;
  TermMsg var_ty = 2;
  TermMsg result_ty = 3;
}

message LambdaMsg {
  string var = 1;
  TermMsg var_ty = 2;
  TermMsg body = 3;
}

message AppMsg {
  TermMsg fn = 1;
  TermMsg arg = 2;
}

message ConRefMsg {
  string ind = 1;
  string con = 2;
}

message TermMsg {
  oneof node {
    string var = 1;
    SortMsg sort = 2;
    ProductMsg product = 3;
    LambdaMsg lambda = 4;
    AppMsg app = 5;
    string ind_ref = 6;
    ConRefMsg con_ref = 7;
    string hole = 8;
  }
}

message InferRequest {
  TermMsg term = 1;
}

message InferResponse {
  TermMsg ty = 1;
  string error = 2;
}

message CheckRequest {
  TermMsg term = 1;
  TermMsg expected = 2;
}

message CheckResponse {
  bool ok = 1;
  string error = 2;
}

message NormalizeRequest {
  TermMsg term = 1;
  bool whnf = 2;
}

message NormalizeResponse {
  TermMsg result = 1;
  string error = 2;
}

service KernelService {
  rpc Infer(InferRequest) returns (InferResponse);
  rpc Check(CheckRequest) returns (CheckResponse);
  rpc Normalize(NormalizeRequest) returns (NormalizeResponse);
}
`

const protoFileName = "kernel.proto"

// fileDescriptor compiles protoSource into a FileDescriptor once per
// process. Grounded on builtinGrpcLoadProto's use of protoparse.Parser,
// here pointed at an in-memory source map instead of a path on disk since
// the schema is fixed and shipped with the binary, not user-supplied.
func fileDescriptor() (*desc.FileDescriptor, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{
			protoFileName: protoSource,
		}),
	}
	fds, err := parser.ParseFiles(protoFileName)
	if err != nil {
		return nil, fmt.Errorf("rpcsvc: parse schema: %w", err)
	}
	return fds[0], nil
}
