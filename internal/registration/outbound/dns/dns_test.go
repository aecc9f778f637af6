package dns

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	mx       []*net.MX
	mxErr    error
	hosts    []string
	hostErr  error
	mxCalls  int
	hostCall int
}

func (f *fakeResolver) LookupMX(context.Context, string) ([]*net.MX, error) {
	f.mxCalls++
	return f.mx, f.mxErr
}

func (f *fakeResolver) LookupHost(context.Context, string) ([]string, error) {
	f.hostCall++
	return f.hosts, f.hostErr
}

func notFound(name string) error {
	return &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

func TestChecker_Resolvable(t *testing.T) {
	tests := []struct {
		name     string
		resolver *fakeResolver
		want     bool
		wantErr  bool
		hostCall int
	}{
		{
			name:     "mx record",
			resolver: &fakeResolver{mx: []*net.MX{{Host: "mx.example.com.", Pref: 10}}},
			want:     true,
		},
		{
			name:     "null mx",
			resolver: &fakeResolver{mx: []*net.MX{{Host: "."}}},
			want:     false,
		},
		{
			name:     "no mx falls back to address",
			resolver: &fakeResolver{mxErr: notFound("example.com"), hosts: []string{"93.184.216.34"}},
			want:     true,
			hostCall: 1,
		},
		{
			name:     "nxdomain",
			resolver: &fakeResolver{mxErr: notFound("nowhere.invalid"), hostErr: notFound("nowhere.invalid")},
			want:     false,
			hostCall: 1,
		},
		{
			name:     "mx server failure",
			resolver: &fakeResolver{mxErr: &net.DNSError{Err: "server misbehaving", IsTemporary: true}},
			wantErr:  true,
		},
		{
			name:     "address lookup failure",
			resolver: &fakeResolver{mxErr: notFound("example.com"), hostErr: errors.New("i/o timeout")},
			wantErr:  true,
			hostCall: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(Config{Resolver: tt.resolver})

			got, err := c.Resolvable(context.Background(), "Example.com.")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.hostCall, tt.resolver.hostCall)
		})
	}
}

func TestChecker_EmptyDomain(t *testing.T) {
	r := &fakeResolver{}
	c := NewChecker(Config{Resolver: r})

	ok, err := c.Resolvable(context.Background(), "  ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, r.mxCalls)
}
