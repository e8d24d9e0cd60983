package gcs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"reflect"
	"testing"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/bobg/reportanchor/testutil"
)

func TestEachHexPrefix(t *testing.T) {
	want := []string{
		"e67b", "e67c", "e67d", "e67e", "e67f",
		"e68", "e69", "e6a", "e6b", "e6c", "e6d", "e6e", "e6f",
		"e7", "e8", "e9", "ea", "eb", "ec", "ed", "ee", "ef",
		"f",
	}
	var got []string
	err := eachHexPrefix("e67a", false, func(prefix string) error {
		got = append(got, prefix)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRecObjName(t *testing.T) {
	addr := testutil.Addr(nil, "gcs")
	got, err := addrFromRecObjName(recObjName(addr))
	if err != nil {
		t.Fatal(err)
	}
	if got != addr {
		t.Errorf("got %s, want %s", got, addr)
	}
}

const (
	credsVar = "REPORTANCHOR_GCS_TESTING_CREDS"
	projVar  = "REPORTANCHOR_GCS_TESTING_PROJECT"
)

func TestStore(t *testing.T) {
	var (
		creds     = os.Getenv(credsVar)
		projectID = os.Getenv(projVar)
	)
	if creds == "" || projectID == "" {
		t.Skipf("to run TestStore, set %s to the name of a credentials file and %s to a project ID", credsVar, projVar)
	}

	var r [30]byte
	_, err := rand.Read(r[:])
	if err != nil {
		t.Fatal(err)
	}
	bucketName := hex.EncodeToString(r[:])

	ctx := context.Background()

	client, err := storage.NewClient(ctx, option.WithCredentialsFile(creds))
	if err != nil {
		t.Fatal(err)
	}

	t.Logf("creating bucket %s in project %s", bucketName, projectID)

	bucket := client.Bucket(bucketName)
	err = bucket.Create(ctx, projectID, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer bucket.Delete(ctx)

	s := New(bucket)
	testutil.CreateOnce(ctx, t, s)
	testutil.ListAddrs(ctx, t, s)
	testutil.Registry(ctx, t, s)

	// The bucket must be empty before it can be deleted.
	for _, addr := range testutil.AllAddrs(ctx, t, s, [32]byte{}) {
		if err := bucket.Object(recObjName(addr)).Delete(ctx); err != nil {
			t.Logf("deleting %s: %s", addr, err)
		}
	}
}
