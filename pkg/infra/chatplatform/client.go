package chatplatform

import "context"

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=chat_client_mock.go --case=underscore --with-expecter
type Client interface {
	CreateChannel(ctx context.Context, spec ChannelSpec) (*Channel, error)
	Channel(ctx context.Context, channelID string) (*Channel, error)
	SendMessage(ctx context.Context, channelID string, msg Outbound) error
	FetchHistory(ctx context.Context, channelID string) ([]Message, error)
	MoveChannel(ctx context.Context, channelID, parentID string) error
	RenameChannel(ctx context.Context, channelID, name string) error
	EditPermission(ctx context.Context, channelID, memberID string, allow, deny []string) error
	DeletePermission(ctx context.Context, channelID, memberID string) error
	Member(ctx context.Context, memberID string) (*Member, error)
	GuildName(ctx context.Context) (string, error)
}
