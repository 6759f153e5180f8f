// Package greeterv1 holds the greeter.v1 wire schema and its gRPC bindings.
//
// greeter.proto is the source of truth. The file descriptor is assembled in
// descriptor.go and registered with the global protobuf registry at init, so
// reflection, protojson and the gRPC codec see the same schema. Messages are
// backed by dynamicpb; construct them with the New* helpers and read them
// through the Get* accessors.
//
// The client and server bindings in greeter_grpc.go follow the layout of
// protoc-gen-go-grpc.
package greeterv1
