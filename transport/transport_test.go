package transport

import "testing"

func TestCheckPeerAccessWorldWritable(t *testing.T) {
	if !checkPeerAccess(0002, 1000, 1000, PeerCredentials{UID: 2000, GID: 2000}) {
		t.Fatal("world-writable listen mode must admit any peer")
	}
}

func TestCheckPeerAccessRoot(t *testing.T) {
	if !checkPeerAccess(0600, 1000, 1000, PeerCredentials{UID: 0, GID: 2000}) {
		t.Fatal("root uid must always be admitted")
	}
	if !checkPeerAccess(0600, 1000, 1000, PeerCredentials{UID: 2000, GID: 0}) {
		t.Fatal("root gid must always be admitted")
	}
}

func TestCheckPeerAccessOwnerUID(t *testing.T) {
	if !checkPeerAccess(0600, 1000, 1000, PeerCredentials{UID: 1000, GID: 2000}) {
		t.Fatal("matching owner uid must be admitted regardless of group")
	}
}

func TestCheckPeerAccessGroupWritable(t *testing.T) {
	if !checkPeerAccess(0060, 1000, 1000, PeerCredentials{UID: 2000, GID: 1000}) {
		t.Fatal("group-writable listen mode with matching gid must be admitted")
	}
	if checkPeerAccess(0060, 1000, 1000, PeerCredentials{UID: 2000, GID: 2000}) {
		t.Fatal("group-writable listen mode with mismatched gid must be denied")
	}
}

func TestCheckPeerAccessDenied(t *testing.T) {
	if checkPeerAccess(0600, 1000, 1000, PeerCredentials{UID: 2000, GID: 2000}) {
		t.Fatal("unrelated uid/gid against a private mode must be denied")
	}
}
