package rpcsvc

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"

	"github.com/cicore/kernel/internal/term"
)

// codec holds every message descriptor the converters need, resolved
// once from the compiled schema. Grounded on the teacher's
// findMessageDescriptor/findServiceDescriptor helpers, collapsed into one
// lookup pass since this schema is fixed rather than loaded at runtime
// from an arbitrary user-supplied .proto file.
type codec struct {
	termMd, sortMd, productMd, lambdaMd, appMd, conRefMd *desc.MessageDescriptor
	inferReqMd, inferRespMd                              *desc.MessageDescriptor
	checkReqMd, checkRespMd                              *desc.MessageDescriptor
	normReqMd, normRespMd                                *desc.MessageDescriptor
}

func newCodec() (*codec, error) {
	fd, err := fileDescriptor()
	if err != nil {
		return nil, err
	}
	find := func(name string) (*desc.MessageDescriptor, error) {
		md := fd.FindMessage("cickernel." + name)
		if md == nil {
			return nil, fmt.Errorf("rpcsvc: message %s missing from compiled schema", name)
		}
		return md, nil
	}
	c := &codec{}
	for _, pair := range []struct {
		name string
		dst  **desc.MessageDescriptor
	}{
		{"TermMsg", &c.termMd},
		{"SortMsg", &c.sortMd},
		{"ProductMsg", &c.productMd},
		{"LambdaMsg", &c.lambdaMd},
		{"AppMsg", &c.appMd},
		{"ConRefMsg", &c.conRefMd},
		{"InferRequest", &c.inferReqMd},
		{"InferResponse", &c.inferRespMd},
		{"CheckRequest", &c.checkReqMd},
		{"CheckResponse", &c.checkRespMd},
		{"NormalizeRequest", &c.normReqMd},
		{"NormalizeResponse", &c.normRespMd},
	} {
		md, err := find(pair.name)
		if err != nil {
			return nil, err
		}
		*pair.dst = md
	}
	return c, nil
}

func field(md *desc.MessageDescriptor, name string) *desc.FieldDescriptor {
	return md.FindFieldByName(name)
}

func setField(msg *dynamic.Message, md *desc.MessageDescriptor, name string, v interface{}) {
	msg.SetField(field(md, name), v)
}

func getField(msg *dynamic.Message, md *desc.MessageDescriptor, name string) interface{} {
	return msg.GetField(field(md, name))
}

func hasField(msg *dynamic.Message, md *desc.MessageDescriptor, name string) bool {
	return msg.HasField(field(md, name))
}

// termToMsg encodes t as a TermMsg. Returns an error for Match, Fix,
// Annot and Axiom, the shapes absent from the wire schema.
func (c *codec) termToMsg(t term.Term) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(c.termMd)
	switch n := t.(type) {
	case *term.Var:
		setField(msg, c.termMd, "var", n.Name)
	case *term.Sort:
		sm := dynamic.NewMessage(c.sortMd)
		setField(sm, c.sortMd, "prop", n.Kind == term.Prop)
		setField(sm, c.sortMd, "level", int32(n.Level))
		setField(msg, c.termMd, "sort", sm)
	case *term.Product:
		varTy, err := c.termToMsg(n.VarTy)
		if err != nil {
			return nil, err
		}
		resultTy, err := c.termToMsg(n.ResultTy)
		if err != nil {
			return nil, err
		}
		pm := dynamic.NewMessage(c.productMd)
		setField(pm, c.productMd, "var", n.Var)
		setField(pm, c.productMd, "var_ty", varTy)
		setField(pm, c.productMd, "result_ty", resultTy)
		setField(msg, c.termMd, "product", pm)
	case *term.Lambda:
		varTy, err := c.termToMsg(n.VarTy)
		if err != nil {
			return nil, err
		}
		body, err := c.termToMsg(n.Body)
		if err != nil {
			return nil, err
		}
		lm := dynamic.NewMessage(c.lambdaMd)
		setField(lm, c.lambdaMd, "var", n.Var)
		setField(lm, c.lambdaMd, "var_ty", varTy)
		setField(lm, c.lambdaMd, "body", body)
		setField(msg, c.termMd, "lambda", lm)
	case *term.App:
		fn, err := c.termToMsg(n.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := c.termToMsg(n.Arg)
		if err != nil {
			return nil, err
		}
		am := dynamic.NewMessage(c.appMd)
		setField(am, c.appMd, "fn", fn)
		setField(am, c.appMd, "arg", arg)
		setField(msg, c.termMd, "app", am)
	case *term.IndRef:
		setField(msg, c.termMd, "ind_ref", n.Name)
	case *term.ConRef:
		cm := dynamic.NewMessage(c.conRefMd)
		setField(cm, c.conRefMd, "ind", n.Ind)
		setField(cm, c.conRefMd, "con", n.Con)
		setField(msg, c.termMd, "con_ref", cm)
	case *term.Hole:
		setField(msg, c.termMd, "hole", n.Tag)
	default:
		return nil, fmt.Errorf("rpcsvc: %T has no wire representation; use the Go API for Match and Fix", t)
	}
	return msg, nil
}

// msgToTerm decodes a TermMsg back into a term.Term.
func (c *codec) msgToTerm(msg *dynamic.Message) (term.Term, error) {
	switch {
	case hasField(msg, c.termMd, "var"):
		return &term.Var{Name: getField(msg, c.termMd, "var").(string)}, nil
	case hasField(msg, c.termMd, "sort"):
		sm := getField(msg, c.termMd, "sort").(*dynamic.Message)
		kind := term.TypeUniverse
		if getField(sm, c.sortMd, "prop").(bool) {
			kind = term.Prop
		}
		level := int(getField(sm, c.sortMd, "level").(int32))
		return &term.Sort{Kind: kind, Level: level}, nil
	case hasField(msg, c.termMd, "product"):
		pm := getField(msg, c.termMd, "product").(*dynamic.Message)
		varTy, err := c.msgToTerm(getField(pm, c.productMd, "var_ty").(*dynamic.Message))
		if err != nil {
			return nil, err
		}
		resultTy, err := c.msgToTerm(getField(pm, c.productMd, "result_ty").(*dynamic.Message))
		if err != nil {
			return nil, err
		}
		return &term.Product{Var: getField(pm, c.productMd, "var").(string), VarTy: varTy, ResultTy: resultTy}, nil
	case hasField(msg, c.termMd, "lambda"):
		lm := getField(msg, c.termMd, "lambda").(*dynamic.Message)
		varTy, err := c.msgToTerm(getField(lm, c.lambdaMd, "var_ty").(*dynamic.Message))
		if err != nil {
			return nil, err
		}
		body, err := c.msgToTerm(getField(lm, c.lambdaMd, "body").(*dynamic.Message))
		if err != nil {
			return nil, err
		}
		return &term.Lambda{Var: getField(lm, c.lambdaMd, "var").(string), VarTy: varTy, Body: body}, nil
	case hasField(msg, c.termMd, "app"):
		am := getField(msg, c.termMd, "app").(*dynamic.Message)
		fn, err := c.msgToTerm(getField(am, c.appMd, "fn").(*dynamic.Message))
		if err != nil {
			return nil, err
		}
		arg, err := c.msgToTerm(getField(am, c.appMd, "arg").(*dynamic.Message))
		if err != nil {
			return nil, err
		}
		return &term.App{Fn: fn, Arg: arg}, nil
	case hasField(msg, c.termMd, "ind_ref"):
		return &term.IndRef{Name: getField(msg, c.termMd, "ind_ref").(string)}, nil
	case hasField(msg, c.termMd, "con_ref"):
		cm := getField(msg, c.termMd, "con_ref").(*dynamic.Message)
		return &term.ConRef{Ind: getField(cm, c.conRefMd, "ind").(string), Con: getField(cm, c.conRefMd, "con").(string)}, nil
	case hasField(msg, c.termMd, "hole"):
		return &term.Hole{Tag: getField(msg, c.termMd, "hole").(string)}, nil
	default:
		return nil, fmt.Errorf("rpcsvc: TermMsg has no node set")
	}
}
