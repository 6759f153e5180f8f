package greeterv1

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

func TestDescriptorRegistered(t *testing.T) {
	d, err := protoregistry.GlobalFiles.FindDescriptorByName("greeter.v1.Greeter")
	if err != nil {
		t.Fatalf("find service: %v", err)
	}
	svc, ok := d.(protoreflect.ServiceDescriptor)
	if !ok {
		t.Fatalf("descriptor is %T", d)
	}
	var got []string
	for i := 0; i < svc.Methods().Len(); i++ {
		m := svc.Methods().Get(i)
		got = append(got, string(m.Name()))
	}
	want := []string{"SendMessage", "SendMessageStream", "ListMessages", "ListMessagesStream"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("methods mismatch (-want +got):\n%s", diff)
	}
	if stream := svc.Methods().ByName("SendMessageStream"); !stream.IsStreamingClient() || !stream.IsStreamingServer() {
		t.Fatalf("SendMessageStream must be bidirectional")
	}
	if feed := svc.Methods().ByName("ListMessagesStream"); feed.IsStreamingClient() || !feed.IsStreamingServer() {
		t.Fatalf("ListMessagesStream must be server streaming")
	}
}

func TestWireRoundTrip(t *testing.T) {
	b, err := proto.Marshal(NewSendMessageRequest("Alice"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	in := new(SendMessageRequest)
	if err := proto.Unmarshal(b, in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.GetName() != "Alice" {
		t.Fatalf("name = %q", in.GetName())
	}

	list := NewListMessagesResponse([]string{"Hello Alice!", "", "Hello Bob!"})
	b, err = proto.Marshal(list)
	if err != nil {
		t.Fatalf("marshal list: %v", err)
	}
	out := new(ListMessagesResponse)
	if err := proto.Unmarshal(b, out); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if diff := cmp.Diff([]string{"Hello Alice!", "", "Hello Bob!"}, out.GetMessages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestZeroValuesAndJSON(t *testing.T) {
	var nilResp *SendMessageResponse
	if nilResp.GetMessage() != "" {
		t.Fatalf("nil response message should be empty")
	}
	if got := new(ListMessagesResponse).GetMessages(); len(got) != 0 {
		t.Fatalf("empty list = %v", got)
	}

	js, err := protojson.Marshal(NewSendMessageResponse("Hello Alice!"))
	if err != nil {
		t.Fatalf("protojson: %v", err)
	}
	var back SendMessageResponse
	if err := protojson.Unmarshal(js, &back); err != nil {
		t.Fatalf("protojson decode: %v", err)
	}
	if back.GetMessage() != "Hello Alice!" {
		t.Fatalf("message = %q", back.GetMessage())
	}
}
