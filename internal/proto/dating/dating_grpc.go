package dating

import (
	"context"

	"google.golang.org/grpc"
)

const (
	Accounts_SignUp_FullMethodName  = "/dating.v1.Accounts/SignUp"
	Accounts_SignIn_FullMethodName  = "/dating.v1.Accounts/SignIn"
	Accounts_SignOut_FullMethodName = "/dating.v1.Accounts/SignOut"

	Directory_GetUser_FullMethodName        = "/dating.v1.Directory/GetUser"
	Directory_UpdateProfile_FullMethodName  = "/dating.v1.Directory/UpdateProfile"
	Directory_ListCandidates_FullMethodName = "/dating.v1.Directory/ListCandidates"

	Swipes_RecordVerdict_FullMethodName      = "/dating.v1.Swipes/RecordVerdict"
	Swipes_GetVerdict_FullMethodName         = "/dating.v1.Swipes/GetVerdict"
	Swipes_CountLikesReceived_FullMethodName = "/dating.v1.Swipes/CountLikesReceived"

	Matches_ListMatches_FullMethodName  = "/dating.v1.Matches/ListMatches"
	Matches_WatchMatches_FullMethodName = "/dating.v1.Matches/WatchMatches"

	Chats_SendMessage_FullMethodName  = "/dating.v1.Chats/SendMessage"
	Chats_ListMessages_FullMethodName = "/dating.v1.Chats/ListMessages"
	Chats_ListThreads_FullMethodName  = "/dating.v1.Chats/ListThreads"
	Chats_WatchThread_FullMethodName  = "/dating.v1.Chats/WatchThread"
	Chats_WatchThreads_FullMethodName = "/dating.v1.Chats/WatchThreads"
)

// PublicMethods can be called without an access token.
var PublicMethods = map[string]bool{
	Accounts_SignUp_FullMethodName: true,
	Accounts_SignIn_FullMethodName: true,
}

// --- shared handler plumbing ---

func unaryHandler[Srv any, Req any, Resp any](fullMethod string, call func(Srv, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(Srv), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(Srv), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func streamHandler[Srv any, Req any, Resp any](call func(Srv, *Req, grpc.ServerStreamingServer[Resp]) error) grpc.StreamHandler {
	return func(srv any, stream grpc.ServerStream) error {
		in := new(Req)
		if err := stream.RecvMsg(in); err != nil {
			return err
		}
		return call(srv.(Srv), in, &grpc.GenericServerStream[Req, Resp]{ServerStream: stream})
	}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func openStream[Req any, Resp any](ctx context.Context, cc grpc.ClientConnInterface, desc *grpc.StreamDesc, method string, in *Req, opts []grpc.CallOption) (grpc.ServerStreamingClient[Resp], error) {
	stream, err := cc.NewStream(ctx, desc, method, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[Req, Resp]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// ===== Accounts =====

type AccountsServer interface {
	SignUp(context.Context, *SignUpRequest) (*AuthResponse, error)
	SignIn(context.Context, *SignInRequest) (*AuthResponse, error)
	SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error)
}

var Accounts_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "dating.v1.Accounts",
	HandlerType: (*AccountsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: unaryHandler(Accounts_SignUp_FullMethodName, AccountsServer.SignUp)},
		{MethodName: "SignIn", Handler: unaryHandler(Accounts_SignIn_FullMethodName, AccountsServer.SignIn)},
		{MethodName: "SignOut", Handler: unaryHandler(Accounts_SignOut_FullMethodName, AccountsServer.SignOut)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dating/v1/accounts",
}

func RegisterAccountsServer(s grpc.ServiceRegistrar, srv AccountsServer) {
	s.RegisterService(&Accounts_ServiceDesc, srv)
}

type AccountsClient struct{ cc grpc.ClientConnInterface }

func NewAccountsClient(cc grpc.ClientConnInterface) *AccountsClient { return &AccountsClient{cc: cc} }

func (c *AccountsClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, Accounts_SignUp_FullMethodName, in, opts)
}
func (c *AccountsClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, Accounts_SignIn_FullMethodName, in, opts)
}
func (c *AccountsClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*SignOutResponse, error) {
	return invoke[SignOutResponse](ctx, c.cc, Accounts_SignOut_FullMethodName, in, opts)
}

// ===== Directory =====

type DirectoryServer interface {
	GetUser(context.Context, *GetUserRequest) (*User, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*User, error)
	ListCandidates(context.Context, *ListCandidatesRequest) (*ListCandidatesResponse, error)
}

var Directory_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "dating.v1.Directory",
	HandlerType: (*DirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetUser", Handler: unaryHandler(Directory_GetUser_FullMethodName, DirectoryServer.GetUser)},
		{MethodName: "UpdateProfile", Handler: unaryHandler(Directory_UpdateProfile_FullMethodName, DirectoryServer.UpdateProfile)},
		{MethodName: "ListCandidates", Handler: unaryHandler(Directory_ListCandidates_FullMethodName, DirectoryServer.ListCandidates)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dating/v1/directory",
}

func RegisterDirectoryServer(s grpc.ServiceRegistrar, srv DirectoryServer) {
	s.RegisterService(&Directory_ServiceDesc, srv)
}

type DirectoryClient struct{ cc grpc.ClientConnInterface }

func NewDirectoryClient(cc grpc.ClientConnInterface) *DirectoryClient {
	return &DirectoryClient{cc: cc}
}

func (c *DirectoryClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, Directory_GetUser_FullMethodName, in, opts)
}
func (c *DirectoryClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, Directory_UpdateProfile_FullMethodName, in, opts)
}
func (c *DirectoryClient) ListCandidates(ctx context.Context, in *ListCandidatesRequest, opts ...grpc.CallOption) (*ListCandidatesResponse, error) {
	return invoke[ListCandidatesResponse](ctx, c.cc, Directory_ListCandidates_FullMethodName, in, opts)
}

// ===== Swipes =====

type SwipesServer interface {
	RecordVerdict(context.Context, *RecordVerdictRequest) (*RecordVerdictResponse, error)
	GetVerdict(context.Context, *GetVerdictRequest) (*GetVerdictResponse, error)
	CountLikesReceived(context.Context, *CountLikesReceivedRequest) (*CountLikesReceivedResponse, error)
}

var Swipes_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "dating.v1.Swipes",
	HandlerType: (*SwipesServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RecordVerdict", Handler: unaryHandler(Swipes_RecordVerdict_FullMethodName, SwipesServer.RecordVerdict)},
		{MethodName: "GetVerdict", Handler: unaryHandler(Swipes_GetVerdict_FullMethodName, SwipesServer.GetVerdict)},
		{MethodName: "CountLikesReceived", Handler: unaryHandler(Swipes_CountLikesReceived_FullMethodName, SwipesServer.CountLikesReceived)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dating/v1/swipes",
}

func RegisterSwipesServer(s grpc.ServiceRegistrar, srv SwipesServer) {
	s.RegisterService(&Swipes_ServiceDesc, srv)
}

type SwipesClient struct{ cc grpc.ClientConnInterface }

func NewSwipesClient(cc grpc.ClientConnInterface) *SwipesClient { return &SwipesClient{cc: cc} }

func (c *SwipesClient) RecordVerdict(ctx context.Context, in *RecordVerdictRequest, opts ...grpc.CallOption) (*RecordVerdictResponse, error) {
	return invoke[RecordVerdictResponse](ctx, c.cc, Swipes_RecordVerdict_FullMethodName, in, opts)
}
func (c *SwipesClient) GetVerdict(ctx context.Context, in *GetVerdictRequest, opts ...grpc.CallOption) (*GetVerdictResponse, error) {
	return invoke[GetVerdictResponse](ctx, c.cc, Swipes_GetVerdict_FullMethodName, in, opts)
}
func (c *SwipesClient) CountLikesReceived(ctx context.Context, in *CountLikesReceivedRequest, opts ...grpc.CallOption) (*CountLikesReceivedResponse, error) {
	return invoke[CountLikesReceivedResponse](ctx, c.cc, Swipes_CountLikesReceived_FullMethodName, in, opts)
}

// ===== Matches =====

type MatchesServer interface {
	ListMatches(context.Context, *ListMatchesRequest) (*MatchList, error)
	WatchMatches(*WatchMatchesRequest, grpc.ServerStreamingServer[MatchList]) error
}

var Matches_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "dating.v1.Matches",
	HandlerType: (*MatchesServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListMatches", Handler: unaryHandler(Matches_ListMatches_FullMethodName, MatchesServer.ListMatches)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchMatches",
			Handler:       streamHandler(MatchesServer.WatchMatches),
			ServerStreams: true,
		},
	},
	Metadata: "dating/v1/matches",
}

func RegisterMatchesServer(s grpc.ServiceRegistrar, srv MatchesServer) {
	s.RegisterService(&Matches_ServiceDesc, srv)
}

type MatchesClient struct{ cc grpc.ClientConnInterface }

func NewMatchesClient(cc grpc.ClientConnInterface) *MatchesClient { return &MatchesClient{cc: cc} }

func (c *MatchesClient) ListMatches(ctx context.Context, in *ListMatchesRequest, opts ...grpc.CallOption) (*MatchList, error) {
	return invoke[MatchList](ctx, c.cc, Matches_ListMatches_FullMethodName, in, opts)
}
func (c *MatchesClient) WatchMatches(ctx context.Context, in *WatchMatchesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[MatchList], error) {
	return openStream[WatchMatchesRequest, MatchList](ctx, c.cc, &Matches_ServiceDesc.Streams[0], Matches_WatchMatches_FullMethodName, in, opts)
}

// ===== Chats =====

type ChatsServer interface {
	SendMessage(context.Context, *SendMessageRequest) (*Message, error)
	ListMessages(context.Context, *ListMessagesRequest) (*MessageList, error)
	ListThreads(context.Context, *ListThreadsRequest) (*ThreadList, error)
	WatchThread(*WatchThreadRequest, grpc.ServerStreamingServer[MessageList]) error
	WatchThreads(*WatchThreadsRequest, grpc.ServerStreamingServer[ThreadList]) error
}

var Chats_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "dating.v1.Chats",
	HandlerType: (*ChatsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SendMessage", Handler: unaryHandler(Chats_SendMessage_FullMethodName, ChatsServer.SendMessage)},
		{MethodName: "ListMessages", Handler: unaryHandler(Chats_ListMessages_FullMethodName, ChatsServer.ListMessages)},
		{MethodName: "ListThreads", Handler: unaryHandler(Chats_ListThreads_FullMethodName, ChatsServer.ListThreads)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchThread",
			Handler:       streamHandler(ChatsServer.WatchThread),
			ServerStreams: true,
		},
		{
			StreamName:    "WatchThreads",
			Handler:       streamHandler(ChatsServer.WatchThreads),
			ServerStreams: true,
		},
	},
	Metadata: "dating/v1/chats",
}

func RegisterChatsServer(s grpc.ServiceRegistrar, srv ChatsServer) {
	s.RegisterService(&Chats_ServiceDesc, srv)
}

type ChatsClient struct{ cc grpc.ClientConnInterface }

func NewChatsClient(cc grpc.ClientConnInterface) *ChatsClient { return &ChatsClient{cc: cc} }

func (c *ChatsClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*Message, error) {
	return invoke[Message](ctx, c.cc, Chats_SendMessage_FullMethodName, in, opts)
}
func (c *ChatsClient) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*MessageList, error) {
	return invoke[MessageList](ctx, c.cc, Chats_ListMessages_FullMethodName, in, opts)
}
func (c *ChatsClient) ListThreads(ctx context.Context, in *ListThreadsRequest, opts ...grpc.CallOption) (*ThreadList, error) {
	return invoke[ThreadList](ctx, c.cc, Chats_ListThreads_FullMethodName, in, opts)
}
func (c *ChatsClient) WatchThread(ctx context.Context, in *WatchThreadRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[MessageList], error) {
	return openStream[WatchThreadRequest, MessageList](ctx, c.cc, &Chats_ServiceDesc.Streams[0], Chats_WatchThread_FullMethodName, in, opts)
}
func (c *ChatsClient) WatchThreads(ctx context.Context, in *WatchThreadsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ThreadList], error) {
	return openStream[WatchThreadsRequest, ThreadList](ctx, c.cc, &Chats_ServiceDesc.Streams[1], Chats_WatchThreads_FullMethodName, in, opts)
}
