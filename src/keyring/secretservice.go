package keyring

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const (
	secretsBusName  = "org.freedesktop.secrets"
	secretsPath     = "/org/freedesktop/secrets"
	serviceIface    = "org.freedesktop.Secret.Service"
	collectionIface = "org.freedesktop.Secret.Collection"
	itemIface       = "org.freedesktop.Secret.Item"
)

// SecretServiceStore reads credentials from a freedesktop Secret Service
// daemon (GNOME Keyring, KWallet 6, keepassxc) over the session bus. It is
// the only backend that supports full enumeration; locked items are skipped.
type SecretServiceStore struct {
	conn *dbus.Conn
	log  zerolog.Logger
}

// dbusSecret mirrors the Secret Service (oayays) secret struct.
type dbusSecret struct {
	Session     dbus.ObjectPath
	Parameters  []byte
	Value       []byte
	ContentType string
}

// ConnectSecretService connects to the session bus and verifies the secrets
// service is reachable.
func ConnectSecretService(log zerolog.Logger) (*SecretServiceStore, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: session bus: %v", ErrUnavailable, err)
	}
	s := &SecretServiceStore{conn: conn, log: log}
	if _, err := s.openSession(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SecretServiceStore) Name() string { return "secret-service" }

func (s *SecretServiceStore) openSession() (dbus.ObjectPath, error) {
	svc := s.conn.Object(secretsBusName, dbus.ObjectPath(secretsPath))
	var output dbus.Variant
	var session dbus.ObjectPath
	call := svc.Call(serviceIface+".OpenSession", 0, "plain", dbus.MakeVariant(""))
	if err := call.Store(&output, &session); err != nil {
		return "", fmt.Errorf("%w: open session: %v", ErrUnavailable, err)
	}
	return session, nil
}

// Credentials walks every collection and returns one Record per unlocked
// item that carries a service attribute or label.
func (s *SecretServiceStore) Credentials() ([]Record, error) {
	session, err := s.openSession()
	if err != nil {
		return nil, err
	}

	svc := s.conn.Object(secretsBusName, dbus.ObjectPath(secretsPath))
	colsVar, err := svc.GetProperty(serviceIface + ".Collections")
	if err != nil {
		return nil, fmt.Errorf("%w: list collections: %v", ErrUnavailable, err)
	}
	var collections []dbus.ObjectPath
	if err := colsVar.Store(&collections); err != nil {
		return nil, fmt.Errorf("%w: decode collections: %v", ErrUnavailable, err)
	}

	var records []Record
	for _, col := range collections {
		items, err := s.collectionItems(col)
		if err != nil {
			s.log.Warn().Str("collection", string(col)).Err(err).Msg("skipping unreadable collection")
			continue
		}
		for _, item := range items {
			rec, ok, err := s.readItem(item, session)
			if err != nil {
				s.log.Warn().Str("item", string(item)).Err(err).Msg("skipping unreadable item")
				continue
			}
			if ok {
				records = append(records, rec)
			}
		}
	}
	return records, nil
}

func (s *SecretServiceStore) collectionItems(col dbus.ObjectPath) ([]dbus.ObjectPath, error) {
	obj := s.conn.Object(secretsBusName, col)
	itemsVar, err := obj.GetProperty(collectionIface + ".Items")
	if err != nil {
		return nil, err
	}
	var items []dbus.ObjectPath
	if err := itemsVar.Store(&items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *SecretServiceStore) readItem(item dbus.ObjectPath, session dbus.ObjectPath) (Record, bool, error) {
	obj := s.conn.Object(secretsBusName, item)

	lockedVar, err := obj.GetProperty(itemIface + ".Locked")
	if err == nil {
		if locked, ok := lockedVar.Value().(bool); ok && locked {
			s.log.Warn().Str("item", string(item)).Msg("item locked, skipping")
			return Record{}, false, nil
		}
	}

	attrsVar, err := obj.GetProperty(itemIface + ".Attributes")
	if err != nil {
		return Record{}, false, err
	}
	attrs := map[string]string{}
	if err := attrsVar.Store(&attrs); err != nil {
		return Record{}, false, err
	}

	service := attrs["service"]
	if service == "" {
		service = attrs["application"]
	}
	if service == "" {
		if labelVar, err := obj.GetProperty(itemIface + ".Label"); err == nil {
			if label, ok := labelVar.Value().(string); ok {
				service = label
			}
		}
	}
	username := attrs["username"]
	if username == "" {
		username = attrs["user"]
	}
	if service == "" {
		// Nothing to key the entry on; not an error, just not exportable.
		return Record{}, false, nil
	}

	var secret dbusSecret
	if err := obj.Call(itemIface+".GetSecret", 0, session).Store(&secret); err != nil {
		return Record{}, false, err
	}

	return Record{
		Service:    service,
		Username:   username,
		Password:   string(secret.Value),
		Attributes: attrs,
	}, true, nil
}
