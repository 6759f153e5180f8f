package greeterv1

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// lazy allocates the backing message on first use so that new(T) is a valid
// empty message, as the gRPC codec requires.
func lazy(m **dynamicpb.Message, d protoreflect.MessageDescriptor) *dynamicpb.Message {
	if *m == nil {
		*m = dynamicpb.NewMessage(d)
	}
	return *m
}

func getString(m *dynamicpb.Message, f protoreflect.FieldDescriptor) string {
	if m == nil {
		return ""
	}
	return m.Get(f).String()
}

// SendMessageRequest carries the name to greet.
type SendMessageRequest struct{ m *dynamicpb.Message }

// NewSendMessageRequest returns a request for name.
func NewSendMessageRequest(name string) *SendMessageRequest {
	x := new(SendMessageRequest)
	x.SetName(name)
	return x
}

func (x *SendMessageRequest) ProtoReflect() protoreflect.Message {
	if x == nil {
		return dynamicpb.NewMessageType(sendMessageRequestDesc).Zero()
	}
	return lazy(&x.m, sendMessageRequestDesc)
}

func (x *SendMessageRequest) GetName() string {
	if x == nil {
		return ""
	}
	return getString(x.m, nameField)
}

func (x *SendMessageRequest) SetName(v string) {
	lazy(&x.m, sendMessageRequestDesc).Set(nameField, protoreflect.ValueOfString(v))
}

// SendMessageResponse carries one greeting.
type SendMessageResponse struct{ m *dynamicpb.Message }

// NewSendMessageResponse returns a response carrying message.
func NewSendMessageResponse(message string) *SendMessageResponse {
	x := new(SendMessageResponse)
	x.SetMessage(message)
	return x
}

func (x *SendMessageResponse) ProtoReflect() protoreflect.Message {
	if x == nil {
		return dynamicpb.NewMessageType(sendMessageResponseDesc).Zero()
	}
	return lazy(&x.m, sendMessageResponseDesc)
}

func (x *SendMessageResponse) GetMessage() string {
	if x == nil {
		return ""
	}
	return getString(x.m, messageField)
}

func (x *SendMessageResponse) SetMessage(v string) {
	lazy(&x.m, sendMessageResponseDesc).Set(messageField, protoreflect.ValueOfString(v))
}

// ListMessagesRequest has no fields.
type ListMessagesRequest struct{ m *dynamicpb.Message }

func (x *ListMessagesRequest) ProtoReflect() protoreflect.Message {
	if x == nil {
		return dynamicpb.NewMessageType(listMessagesRequestDesc).Zero()
	}
	return lazy(&x.m, listMessagesRequestDesc)
}

// ListMessagesResponse carries persisted greetings in storage order.
type ListMessagesResponse struct{ m *dynamicpb.Message }

// NewListMessagesResponse returns a response carrying messages.
func NewListMessagesResponse(messages []string) *ListMessagesResponse {
	x := new(ListMessagesResponse)
	x.SetMessages(messages)
	return x
}

func (x *ListMessagesResponse) ProtoReflect() protoreflect.Message {
	if x == nil {
		return dynamicpb.NewMessageType(listMessagesResponseDesc).Zero()
	}
	return lazy(&x.m, listMessagesResponseDesc)
}

func (x *ListMessagesResponse) GetMessages() []string {
	if x == nil || x.m == nil {
		return nil
	}
	list := x.m.Get(messagesField).List()
	out := make([]string, list.Len())
	for i := range out {
		out[i] = list.Get(i).String()
	}
	return out
}

func (x *ListMessagesResponse) SetMessages(v []string) {
	m := lazy(&x.m, listMessagesResponseDesc)
	m.Clear(messagesField)
	if len(v) == 0 {
		return
	}
	list := m.Mutable(messagesField).List()
	for _, s := range v {
		list.Append(protoreflect.ValueOfString(s))
	}
}
