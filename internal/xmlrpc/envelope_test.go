// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package xmlrpc

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	rpcerrors "odoolink/cli/internal/errors"
)

func TestBuildScalars(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{name: "int", value: Int(42), want: "<value><int>42</int></value>"},
		{name: "negative int", value: Int(-3), want: "<value><int>-3</int></value>"},
		{name: "true", value: Bool(true), want: "<value><boolean>1</boolean></value>"},
		{name: "false", value: Bool(false), want: "<value><boolean>0</boolean></value>"},
		{name: "double", value: Double(1234567.5), want: "<value><double>1234567.5</double></value>"},
		{name: "string escaped", value: String("a<b&c"), want: "<value><string>a&lt;b&amp;c</string></value>"},
		{name: "nil", value: Nil{}, want: "<value><nil/></value>"},
		{
			name:  "datetime",
			value: DateTime(time.Date(2023, 12, 1, 8, 5, 9, 0, time.UTC)),
			want:  "<value><dateTime.iso8601>20231201T08:05:09</dateTime.iso8601></value>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Build(MethodCall{MethodName: "m", Params: []Value{tt.value}})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if !strings.Contains(string(out), "<param>"+tt.want+"</param>") {
				t.Errorf("Build() = %s, want param %s", out, tt.want)
			}
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	mk := func() MethodCall {
		c, err := NewCall("execute_kw", "db", 2, "pw", "res.partner", "search_read",
			[]any{[]any{}}, map[string]any{"fields": []string{"name", "email"}, "limit": 5})
		if err != nil {
			t.Fatalf("NewCall() error = %v", err)
		}
		return c
	}
	a, err := Build(mk())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	b, err := Build(mk())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("Build() not deterministic:\n%s\n%s", a, b)
	}
}

func TestBuildRejectsEmptyMethod(t *testing.T) {
	_, err := Build(MethodCall{MethodName: "  "})
	if !errors.Is(err, rpcerrors.ErrProtocol) {
		t.Fatalf("Build() error = %v, want protocol_error", err)
	}
}

func TestBuildParseCallRoundTrip(t *testing.T) {
	call, err := NewCall("authenticate", "db", "admin", "secret", map[string]any{})
	if err != nil {
		t.Fatalf("NewCall() error = %v", err)
	}
	body, err := Build(call)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	got, err := ParseCall(body)
	if err != nil {
		t.Fatalf("ParseCall() error = %v", err)
	}
	if !reflect.DeepEqual(got, call) {
		t.Errorf("ParseCall() = %#v, want %#v", got, call)
	}
}

func TestParseValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Value
	}{
		{name: "int", body: "<int>42</int>", want: Int(42)},
		{name: "i4", body: "<i4> 7 </i4>", want: Int(7)},
		{name: "boolean zero", body: "<boolean>0</boolean>", want: Bool(false)},
		{name: "boolean one", body: "<boolean>1</boolean>", want: Bool(true)},
		{name: "double", body: "<double>-2.5</double>", want: Double(-2.5)},
		{name: "untyped string", body: "plain text", want: String("plain text")},
		{name: "empty string", body: "<string></string>", want: String("")},
		{name: "nil", body: "<nil/>", want: Nil{}},
		{name: "namespaced nil", body: `<ex:nil xmlns:ex="http://ws.apache.org/xmlrpc/namespaces/extensions"/>`, want: Nil{}},
		{name: "unknown tag falls back to text", body: "<base64>aGk=</base64>", want: String("aGk=")},
		{name: "empty array", body: "<array><data></data></array>", want: Array{}},
		{
			name: "nested",
			body: "<array><data><value><struct><member><name>ids</name><value><array><data><value><int>1</int></value></data></array></value></member></struct></value></data></array>",
			want: Array{Struct{{Name: "ids", Value: Array{Int(1)}}}},
		},
		{
			name: "datetime",
			body: "<dateTime.iso8601>20240315T09:30:45</dateTime.iso8601>",
			want: DateTime(time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "<?xml version=\"1.0\"?><methodResponse><params><param><value>" + tt.body + "</value></param></params></methodResponse>"
			res, err := Parse([]byte(doc))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if res.Fault != nil {
				t.Fatalf("Parse() unexpected fault %v", res.Fault)
			}
			if dt, ok := tt.want.(DateTime); ok {
				if !res.Value.(DateTime).Time().Equal(dt.Time()) {
					t.Errorf("Parse() = %v, want %v", res.Value, tt.want)
				}
				return
			}
			if !reflect.DeepEqual(res.Value, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", res.Value, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "empty", body: "", want: rpcerrors.ErrProtocol},
		{name: "malformed", body: "<methodResponse><params>", want: rpcerrors.ErrProtocol},
		{name: "missing value", body: "<methodResponse><params><param></param></params></methodResponse>", want: rpcerrors.ErrProtocol},
		{name: "bad timestamp", body: "<methodResponse><params><param><value><dateTime.iso8601>2024-03-15 09:30</dateTime.iso8601></value></param></params></methodResponse>", want: rpcerrors.ErrMalformedTimestamp},
		{name: "member without name", body: "<methodResponse><params><param><value><struct><member><value><int>1</int></value></member></struct></value></param></params></methodResponse>", want: rpcerrors.ErrMissingMemberName},
		{name: "duplicate member", body: "<methodResponse><params><param><value><struct><member><name>a</name><value><int>1</int></value></member><member><name>a</name><value><int>2</int></value></member></struct></value></param></params></methodResponse>", want: rpcerrors.ErrProtocol},
		{name: "bad int", body: "<methodResponse><params><param><value><int>1,000</int></value></param></params></methodResponse>", want: rpcerrors.ErrProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseFault(t *testing.T) {
	res, err := Parse(BuildFault(3, "Access Denied"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Fault == nil {
		t.Fatalf("Parse() fault not detected: %#v", res)
	}
	if res.Fault.Code != 3 || res.Fault.Message != "Access Denied" {
		t.Errorf("Parse() fault = %+v", res.Fault)
	}
	if !errors.Is(res.Err(), rpcerrors.ErrRemoteFault) {
		t.Errorf("Err() = %v, want remote_fault", res.Err())
	}
}

func TestParseFaultStringCode(t *testing.T) {
	doc := `<methodResponse><fault><value><struct>
<member><name>faultCode</name><value><string>42</string></value></member>
<member><name>faultString</name><value><string>boom</string></value></member>
</struct></value></fault></methodResponse>`
	res, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Fault == nil || res.Fault.Code != 42 || res.Fault.Message != "boom" {
		t.Errorf("Parse() fault = %+v", res.Fault)
	}
}

func TestBuildResponseParse(t *testing.T) {
	want := Struct{
		{Name: "server_version", Value: String("17.0")},
		{Name: "protocol_version", Value: Int(1)},
	}
	body, err := BuildResponse(want)
	if err != nil {
		t.Fatalf("BuildResponse() error = %v", err)
	}
	res, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(res.Value, want) {
		t.Errorf("Parse() = %#v, want %#v", res.Value, want)
	}
}

func TestScenarioIntegerAndBoolean(t *testing.T) {
	v, err := Encode(42)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	body, err := BuildResponse(v)
	if err != nil {
		t.Fatalf("BuildResponse() error = %v", err)
	}
	if !strings.Contains(string(body), "<int>42</int>") {
		t.Errorf("wire form = %s", body)
	}
	res, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	native, _ := Decode(res.Value)
	if native != int64(42) {
		t.Errorf("decoded = %#v, want 42", native)
	}

	bv, _ := Encode(true)
	body, _ = BuildResponse(bv)
	if !strings.Contains(string(body), "<boolean>1</boolean>") {
		t.Errorf("wire form = %s", body)
	}
	res, err = Parse([]byte("<methodResponse><params><param><value><boolean>0</boolean></value></param></params></methodResponse>"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	native, _ = Decode(res.Value)
	if native != false {
		t.Errorf("decoded = %#v, want false", native)
	}
}
