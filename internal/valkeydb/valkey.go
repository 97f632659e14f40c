package valkeydb

import (
	"context"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"
)

type ValkeyClient struct {
	Client valkey.Client
}

// New connects to address, which is either host:port or a redis:// or
// valkey:// URL. A non-empty password overrides the one in the URL.
func New(ctx context.Context, address string, password string) (*ValkeyClient, error) {

	option := valkey.ClientOption{InitAddress: []string{address}}

	if strings.Contains(address, "://") {
		parsed, err := valkey.ParseURL(address)
		if err != nil {
			return nil, fmt.Errorf("invalid Valkey url: %w", err)
		}
		option = parsed
	}

	if password != "" {
		option.Password = password
	}

	client, err := valkey.NewClient(option)
	if err != nil {
		return nil, fmt.Errorf("unable to create Valkey client: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping Valkey: %w", err)
	}

	return &ValkeyClient{Client: client}, nil
}

func (v *ValkeyClient) Close() {
	v.Client.Close()
}
