package server

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	_ "google.golang.org/protobuf/types/known/structpb"
)

const summarizerProtoPath = "medsummary/v1/summarizer.proto"

// summarizerFile describes SummarizerService in the global registry so that
// reflection clients (grpcurl, grpcui) can resolve it. It is the equivalent of:
//
//	syntax = "proto3";
//	package medsummary.v1;
//	import "google/protobuf/struct.proto";
//	service SummarizerService {
//	  rpc Summarize(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
var summarizerFile = registerSummarizerFile()

func registerSummarizerFile() protoreflect.FileDescriptor {
	if fd, err := protoregistry.GlobalFiles.FindFileByPath(summarizerProtoPath); err == nil {
		return fd
	}
	fdp := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(summarizerProtoPath),
		Package:    proto.String("medsummary.v1"),
		Dependency: []string{"google/protobuf/struct.proto"},
		Syntax:     proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("SummarizerService"),
			Method: []*descriptorpb.MethodDescriptorProto{{
				Name:       proto.String("Summarize"),
				InputType:  proto.String(".google.protobuf.Struct"),
				OutputType: proto.String(".google.protobuf.Struct"),
			}},
		}},
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/joseph-ayodele/medreport-summarizer/internal/server"),
		},
	}
	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("build %s: %v", summarizerProtoPath, err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("register %s: %v", summarizerProtoPath, err))
	}
	return fd
}
