package greeterv1

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// FileName is the registry path of greeter.proto.
const FileName = "greeter/v1/greeter.proto"

var (
	// File_greeter_v1_greeter_proto is the resolved greeter.proto descriptor.
	File_greeter_v1_greeter_proto protoreflect.FileDescriptor

	sendMessageRequestDesc   protoreflect.MessageDescriptor
	sendMessageResponseDesc  protoreflect.MessageDescriptor
	listMessagesRequestDesc  protoreflect.MessageDescriptor
	listMessagesResponseDesc protoreflect.MessageDescriptor

	nameField     protoreflect.FieldDescriptor
	messageField  protoreflect.FieldDescriptor
	messagesField protoreflect.FieldDescriptor
)

func init() {
	fd, err := protodesc.NewFile(fileDescriptorProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic("greeterv1: build descriptor: " + err.Error())
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic("greeterv1: register descriptor: " + err.Error())
	}
	File_greeter_v1_greeter_proto = fd

	msgs := fd.Messages()
	sendMessageRequestDesc = msgs.ByName("SendMessageRequest")
	sendMessageResponseDesc = msgs.ByName("SendMessageResponse")
	listMessagesRequestDesc = msgs.ByName("ListMessagesRequest")
	listMessagesResponseDesc = msgs.ByName("ListMessagesResponse")

	nameField = sendMessageRequestDesc.Fields().ByName("name")
	messageField = sendMessageResponseDesc.Fields().ByName("message")
	messagesField = listMessagesResponseDesc.Fields().ByName("messages")
}

func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	str := descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum()
	optional := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()
	repeated := descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()

	field := func(name string, label *descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto {
		return &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(name),
			JsonName: proto.String(name),
			Number:   proto.Int32(1),
			Label:    label,
			Type:     str,
		}
	}
	method := func(name, in, out string, clientStreaming, serverStreaming bool) *descriptorpb.MethodDescriptorProto {
		m := &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(".greeter.v1." + in),
			OutputType: proto.String(".greeter.v1." + out),
		}
		if clientStreaming {
			m.ClientStreaming = proto.Bool(true)
		}
		if serverStreaming {
			m.ServerStreaming = proto.Bool(true)
		}
		return m
	}

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(FileName),
		Package: proto.String("greeter.v1"),
		Syntax:  proto.String("proto3"),
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/rzbill/greetd/api/greeter/v1;greeterv1"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			{Name: proto.String("SendMessageRequest"), Field: []*descriptorpb.FieldDescriptorProto{field("name", optional)}},
			{Name: proto.String("SendMessageResponse"), Field: []*descriptorpb.FieldDescriptorProto{field("message", optional)}},
			{Name: proto.String("ListMessagesRequest")},
			{Name: proto.String("ListMessagesResponse"), Field: []*descriptorpb.FieldDescriptorProto{field("messages", repeated)}},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("Greeter"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("SendMessage", "SendMessageRequest", "SendMessageResponse", false, false),
				method("SendMessageStream", "SendMessageRequest", "SendMessageResponse", true, true),
				method("ListMessages", "ListMessagesRequest", "ListMessagesResponse", false, false),
				method("ListMessagesStream", "ListMessagesRequest", "SendMessageResponse", false, true),
			},
		}},
	}
}
