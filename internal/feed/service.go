package feed

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName identifies the feed service on the wire.
const ServiceName = "edos.feed.v1.Feed"

// SubscribeMethod is the full method name of the duplex stream.
const SubscribeMethod = "/" + ServiceName + "/Subscribe"

// SubscribeStream is the server-side view of one duplex subscription.
type SubscribeStream interface {
	Send(*Frame) error
	Recv() (*Frame, error)
	Context() context.Context
}

// FeedServer is implemented by feed providers.
type FeedServer interface {
	Subscribe(stream SubscribeStream) error
}

// StreamDesc describes the Subscribe stream for manual registration. The
// service descriptor is written by hand because the wire format is JSON
// frames, not generated message types.
var StreamDesc = grpc.StreamDesc{
	StreamName:    "Subscribe",
	Handler:       subscribeHandler,
	ServerStreams: true,
	ClientStreams: true,
}

// ServiceDesc is the hand-written gRPC service descriptor.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FeedServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams:     []grpc.StreamDesc{StreamDesc},
	Metadata:    "edos/feed/v1/feed.json",
}

// RegisterFeedServer attaches a feed implementation to a gRPC server.
func RegisterFeedServer(registrar grpc.ServiceRegistrar, srv FeedServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	return srv.(FeedServer).Subscribe(&serverStream{stream})
}

type serverStream struct {
	grpc.ServerStream
}

func (s *serverStream) Send(frame *Frame) error {
	return s.SendMsg(frame)
}

func (s *serverStream) Recv() (*Frame, error) {
	frame := new(Frame)
	if err := s.RecvMsg(frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// ClientStream is the client-side view of one duplex subscription.
type ClientStream struct {
	grpc.ClientStream
}

// Send writes a frame to the server.
func (c *ClientStream) Send(frame *Frame) error {
	return c.SendMsg(frame)
}

// Recv reads the next frame. Returns io.EOF on clean stream end.
func (c *ClientStream) Recv() (*Frame, error) {
	frame := new(Frame)
	if err := c.RecvMsg(frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// Subscribe opens the duplex stream on an established connection.
func Subscribe(ctx context.Context, conn grpc.ClientConnInterface) (*ClientStream, error) {
	stream, err := conn.NewStream(ctx, &StreamDesc, SubscribeMethod, grpc.CallContentSubtype(CodecName))
	if err != nil {
		return nil, err
	}
	return &ClientStream{ClientStream: stream}, nil
}
