package apk_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dima09182/depviz/pkg/apk"
	"github.com/Dima09182/depviz/pkg/apk/apktest"
	deperrors "github.com/Dima09182/depviz/pkg/errors"
)

func TestExtractDependencies(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []string
	}{
		{
			name: "declared order",
			data: apktest.SimplePackage("foo", "1.0-r0", "bar", "baz"),
			want: []string{"bar", "baz"},
		},
		{
			name: "no dependencies",
			data: apktest.SimplePackage("musl", "1.2.5-r0"),
			want: []string{},
		},
		{
			name: "trailing whitespace trimmed",
			data: apktest.Package("pkgname = foo\ndepend = bar  \r\ndepend = so:libc.musl-x86_64.so.1\n"),
			want: []string{"bar", "so:libc.musl-x86_64.so.1"},
		},
		{
			name: "only exact prefix counts",
			data: apktest.Package("pkgname = foo\n depend = indented\ndepend=tight\ndepend = ok\n"),
			want: []string{"ok"},
		},
		{
			name: "missing metadata member",
			data: apktest.Segment(true, apktest.Member{Name: "usr/bin/foo", Body: []byte("x")}),
			want: []string{},
		},
		{
			name: "dot-slash member name",
			data: apktest.Segment(true, apktest.Member{Name: "./.PKGINFO", Body: []byte("depend = bar\n")}),
			want: []string{"bar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := apk.ExtractDependencies(tt.data)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractDependenciesMalformed(t *testing.T) {
	valid := apktest.SimplePackage("foo", "1.0-r0", "bar")

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not gzip", []byte("definitely not an archive")},
		{"truncated", valid[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := apk.ExtractDependencies(tt.data)
			require.Error(t, err)

			var are *apk.ArchiveReadError
			assert.True(t, errors.As(err, &are))
			assert.ErrorIs(t, err, apk.ErrArchiveRead)
			assert.True(t, deperrors.Is(err, deperrors.ErrCodeArchiveRead))
		})
	}
}

func TestReadPackageInfo(t *testing.T) {
	data := apktest.Package(
		"# Generated by abuild\n" +
			"pkgname = busybox\n" +
			"pkgver = 1.36.1-r29\n" +
			"pkgdesc = Size optimized toolbox\n" +
			"url = https://busybox.net/\n" +
			"arch = x86_64\n" +
			"license = GPL-2.0-only\n" +
			"origin = busybox\n" +
			"size = 958464\n" +
			"depend = so:libc.musl-x86_64.so.1\n" +
			"provides = /bin/sh\n",
	)

	info, err := apk.ReadPackageInfo(data)
	require.NoError(t, err)

	assert.Equal(t, "busybox", info.Name)
	assert.Equal(t, "1.36.1-r29", info.Version)
	assert.Equal(t, "Size optimized toolbox", info.Description)
	assert.Equal(t, "https://busybox.net/", info.URL)
	assert.Equal(t, "x86_64", info.Arch)
	assert.Equal(t, "GPL-2.0-only", info.License)
	assert.Equal(t, "busybox", info.Origin)
	assert.Equal(t, int64(958464), info.Size)
	assert.Equal(t, []string{"so:libc.musl-x86_64.so.1"}, info.Depends)
	assert.Equal(t, []string{"/bin/sh"}, info.Provides)
	assert.Equal(t, "busybox-1.36.1-r29.apk", info.Filename())
}

func TestReadPackageInfoMissing(t *testing.T) {
	info, err := apk.ReadPackageInfo(apktest.Segment(true, apktest.Member{Name: "README", Body: []byte("hi")}))
	require.NoError(t, err)
	assert.Empty(t, info.Name)
	assert.Empty(t, info.Filename())
	assert.Equal(t, []string{}, info.Depends)
}
