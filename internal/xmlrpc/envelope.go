// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	rpcerrors "odoolink/cli/internal/errors"
)

// ContentType is the media type of XML-RPC documents.
const ContentType = "text/xml"

// MethodCall is a method name plus ordered parameters.
type MethodCall struct {
	MethodName string
	Params     []Value
}

// NewCall encodes native arguments into a MethodCall.
func NewCall(method string, args ...any) (MethodCall, error) {
	params := make([]Value, 0, len(args))
	for _, a := range args {
		v, err := Encode(a)
		if err != nil {
			return MethodCall{}, err
		}
		params = append(params, v)
	}
	return MethodCall{MethodName: method, Params: params}, nil
}

// MethodResult is either a value or a fault. Exactly one field is set.
type MethodResult struct {
	Value Value
	Fault *rpcerrors.Fault
}

// Err returns the fault as an error, or nil for a value result.
func (r MethodResult) Err() error {
	if r.Fault != nil {
		return r.Fault
	}
	return nil
}

// Build renders a methodCall document. Equal calls render byte-identical
// output.
func Build(call MethodCall) ([]byte, error) {
	if strings.TrimSpace(call.MethodName) == "" {
		return nil, rpcerrors.New(rpcerrors.ProtocolError, "empty method name")
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodCall><methodName>")
	escape(&buf, call.MethodName)
	buf.WriteString("</methodName><params>")
	for _, p := range call.Params {
		buf.WriteString("<param>")
		if err := writeValue(&buf, p); err != nil {
			return nil, err
		}
		buf.WriteString("</param>")
	}
	buf.WriteString("</params></methodCall>")
	return buf.Bytes(), nil
}

// BuildResponse renders a methodResponse document carrying v.
func BuildResponse(v Value) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><params><param>")
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	buf.WriteString("</param></params></methodResponse>")
	return buf.Bytes(), nil
}

// BuildFault renders a methodResponse document carrying a fault.
func BuildFault(code int64, message string) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><fault>")
	// A two-member struct of Int and String always renders.
	_ = writeValue(&buf, Struct{
		{Name: "faultCode", Value: Int(code)},
		{Name: "faultString", Value: String(message)},
	})
	buf.WriteString("</fault></methodResponse>")
	return buf.Bytes()
}

func escape(buf *bytes.Buffer, s string) {
	// xml.EscapeText only fails when the writer fails; bytes.Buffer never does.
	_ = xml.EscapeText(buf, []byte(s))
}

func writeValue(buf *bytes.Buffer, v Value) error {
	buf.WriteString("<value>")
	switch t := v.(type) {
	case nil, Nil:
		buf.WriteString("<nil/>")
	case Int:
		buf.WriteString("<int>")
		buf.WriteString(strconv.FormatInt(int64(t), 10))
		buf.WriteString("</int>")
	case String:
		buf.WriteString("<string>")
		escape(buf, string(t))
		buf.WriteString("</string>")
	case Bool:
		if t {
			buf.WriteString("<boolean>1</boolean>")
		} else {
			buf.WriteString("<boolean>0</boolean>")
		}
	case Double:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return rpcerrors.Newf(rpcerrors.UnsupportedType, "double %v has no wire form", f)
		}
		buf.WriteString("<double>")
		buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
		buf.WriteString("</double>")
	case DateTime:
		buf.WriteString("<dateTime.iso8601>")
		buf.WriteString(time.Time(t).Format(DateTimeLayout))
		buf.WriteString("</dateTime.iso8601>")
	case Array:
		buf.WriteString("<array><data>")
		for _, e := range t {
			if err := writeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteString("</data></array>")
	case Struct:
		buf.WriteString("<struct>")
		for _, m := range t {
			if m.Name == "" {
				return rpcerrors.New(rpcerrors.MissingMemberName, "struct member without name")
			}
			buf.WriteString("<member><name>")
			escape(buf, m.Name)
			buf.WriteString("</name>")
			if err := writeValue(buf, m.Value); err != nil {
				return err
			}
			buf.WriteString("</member>")
		}
		buf.WriteString("</struct>")
	default:
		return rpcerrors.New(rpcerrors.UnsupportedType, fmt.Sprintf("%T", v))
	}
	buf.WriteString("</value>")
	return nil
}

// node is a minimal element tree; the documents involved are small.
type node struct {
	name     string
	text     strings.Builder
	children []*node
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// innerText concatenates all character data below n in document order.
func (n *node) innerText() string {
	if len(n.children) == 0 {
		return n.text.String()
	}
	var sb strings.Builder
	sb.WriteString(n.text.String())
	for _, c := range n.children {
		sb.WriteString(c.innerText())
	}
	return sb.String()
}

// find returns the first element named name in document order, n included.
func (n *node) find(name string) *node {
	if n.name == name {
		return n
	}
	for _, c := range n.children {
		if f := c.find(name); f != nil {
			return f
		}
	}
	return nil
}

func parseTree(body []byte) (*node, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, rpcerrors.New(rpcerrors.ProtocolError, "empty document")
	}
	dec := xml.NewDecoder(bytes.NewReader(body))
	var (
		root  *node
		stack []*node
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rpcerrors.Wrap(rpcerrors.ProtocolError, "malformed document", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			// Namespaced extension tags such as ex:nil are matched by local name.
			n := &node{name: strings.ToLower(t.Name.Local)}
			if len(stack) == 0 {
				if root != nil {
					return nil, rpcerrors.New(rpcerrors.ProtocolError, "multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, rpcerrors.New(rpcerrors.ProtocolError, "no root element")
	}
	return root, nil
}

// Parse reads a methodResponse document. A fault element yields a
// MethodResult with Fault set; otherwise the first value element in the
// document is decoded. A document without any value element fails with
// protocol_error, which is distinct from a decoded Nil.
func Parse(body []byte) (MethodResult, error) {
	root, err := parseTree(body)
	if err != nil {
		return MethodResult{}, err
	}
	if f := root.child("fault"); f != nil {
		fault, err := parseFault(f)
		if err != nil {
			return MethodResult{}, err
		}
		return MethodResult{Fault: fault}, nil
	}
	vn := root.find("value")
	if vn == nil {
		return MethodResult{}, rpcerrors.New(rpcerrors.ProtocolError, "missing value")
	}
	v, err := parseValue(vn)
	if err != nil {
		return MethodResult{}, err
	}
	return MethodResult{Value: v}, nil
}

// ParseCall reads a methodCall document.
func ParseCall(body []byte) (MethodCall, error) {
	root, err := parseTree(body)
	if err != nil {
		return MethodCall{}, err
	}
	if root.name != "methodcall" {
		return MethodCall{}, rpcerrors.Newf(rpcerrors.ProtocolError, "unexpected root %q", root.name)
	}
	mn := root.child("methodname")
	if mn == nil || strings.TrimSpace(mn.text.String()) == "" {
		return MethodCall{}, rpcerrors.New(rpcerrors.ProtocolError, "missing method name")
	}
	call := MethodCall{MethodName: strings.TrimSpace(mn.text.String())}
	if ps := root.child("params"); ps != nil {
		for _, p := range ps.children {
			if p.name != "param" {
				continue
			}
			vn := p.child("value")
			if vn == nil {
				return MethodCall{}, rpcerrors.New(rpcerrors.ProtocolError, "param without value")
			}
			v, err := parseValue(vn)
			if err != nil {
				return MethodCall{}, err
			}
			call.Params = append(call.Params, v)
		}
	}
	return call, nil
}

func parseFault(f *node) (*rpcerrors.Fault, error) {
	vn := f.find("value")
	if vn == nil {
		return nil, rpcerrors.New(rpcerrors.ProtocolError, "fault without value")
	}
	v, err := parseValue(vn)
	if err != nil {
		return nil, err
	}
	st, ok := v.(Struct)
	if !ok {
		return nil, rpcerrors.Newf(rpcerrors.ProtocolError, "fault value is %s, not struct", v.Kind())
	}
	fault := &rpcerrors.Fault{}
	if c, ok := st.Get("faultCode"); ok {
		switch ct := c.(type) {
		case Int:
			fault.Code = int64(ct)
		case String:
			// Some servers send string codes; keep the message intact either way.
			if n, err := strconv.ParseInt(strings.TrimSpace(string(ct)), 10, 64); err == nil {
				fault.Code = n
			}
		}
	}
	if s, ok := st.Get("faultString"); ok {
		if str, ok := s.(String); ok {
			fault.Message = string(str)
		}
	}
	return fault, nil
}

func parseValue(vn *node) (Value, error) {
	if len(vn.children) == 0 {
		return String(vn.text.String()), nil
	}
	typed := vn.children[0]
	text := typed.innerText()
	switch typed.name {
	case "int", "i4", "i8":
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, rpcerrors.Wrap(rpcerrors.ProtocolError, "bad int", err)
		}
		return Int(n), nil
	case "boolean":
		switch strings.TrimSpace(text) {
		case "1", "true":
			return Bool(true), nil
		case "0", "false":
			return Bool(false), nil
		}
		return nil, rpcerrors.Newf(rpcerrors.ProtocolError, "bad boolean %q", text)
	case "double":
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, rpcerrors.Wrap(rpcerrors.ProtocolError, "bad double", err)
		}
		return Double(f), nil
	case "datetime.iso8601":
		t, err := time.Parse(DateTimeLayout, strings.TrimSpace(text))
		if err != nil {
			return nil, rpcerrors.Wrap(rpcerrors.MalformedTimestamp, text, err)
		}
		return DateTime(t), nil
	case "string":
		return String(text), nil
	case "nil":
		return Nil{}, nil
	case "array":
		out := Array{}
		data := typed.child("data")
		if data == nil {
			return out, nil
		}
		for _, c := range data.children {
			if c.name != "value" {
				continue
			}
			ev, err := parseValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		return out, nil
	case "struct":
		out := Struct{}
		for _, m := range typed.children {
			if m.name != "member" {
				continue
			}
			nn := m.child("name")
			if nn == nil {
				return nil, rpcerrors.New(rpcerrors.MissingMemberName, "struct member without name")
			}
			mv := m.child("value")
			if mv == nil {
				return nil, rpcerrors.Newf(rpcerrors.ProtocolError, "member %q without value", nn.text.String())
			}
			ev, err := parseValue(mv)
			if err != nil {
				return nil, err
			}
			out = append(out, Member{Name: nn.text.String(), Value: ev})
		}
		if err := checkMembers(out); err != nil {
			return nil, err
		}
		return out, nil
	}
	// Unknown tags (base64, vendor extensions) fall back to their text.
	return String(text), nil
}
