package address

import (
	"context"
	"fmt"
	"time"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
	"github.com/pasarkita/storefront/lib/myuuid"
	"github.com/pasarkita/storefront/services/cartapi"
)

// AddressBook holds the shopper's saved checkout addresses and which one is
// currently selected. The selected uid always references a saved address.
type AddressBook struct {
	ShopperUID   string
	CreatedAt    time.Time
	LastModified *time.Time
	Addresses    []SavedAddress
	SelectedUID  string
}

type SavedAddress struct {
	UID     string
	Label   string
	Address cartapi.Address
}

func (b AddressBook) find(uid string) (SavedAddress, bool) {
	for _, saved := range b.Addresses {
		if saved.UID == uid {
			return saved, true
		}
	}
	return SavedAddress{}, false
}

type service struct {
	addressStore mystore.Store[AddressBook]
	nower        mytime.Nower
	uuider       myuuid.UUIDer
	logger       mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(addressStore mystore.Store[AddressBook], nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *service {
	return &service{
		addressStore: addressStore,
		nower:        nower,
		uuider:       uuider,
		logger:       logger,
	}
}

func (s *service) getAddressBook(c context.Context, shopperUID string) (AddressBook, error) {
	book, found, err := s.addressStore.Get(c, shopperUID)
	if err != nil {
		return AddressBook{}, myerrors.NewInternalError(err)
	}
	if !found {
		book = AddressBook{
			ShopperUID: shopperUID,
			CreatedAt:  s.nower.Now(),
			Addresses:  []SavedAddress{},
		}
	}

	return book, nil
}

func (s *service) addAddress(c context.Context, shopperUID string, label string, address cartapi.Address) (AddressBook, error) {
	err := validateAddress(address)
	if err != nil {
		return AddressBook{}, err
	}

	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Add address for shopper %s", shopperUID)

	var book AddressBook
	err = s.addressStore.RunInTransaction(c, func(c context.Context) error {
		book, err = s.getAddressBook(c, shopperUID)
		if err != nil {
			return err
		}

		saved := SavedAddress{
			UID:     s.uuider.Create(),
			Label:   label,
			Address: address,
		}
		book.Addresses = append(book.Addresses, saved)

		// The first address becomes the selection
		if book.SelectedUID == "" {
			book.SelectedUID = saved.UID
		}

		return s.store(c, &book)
	})
	if err != nil {
		return AddressBook{}, err
	}

	return book, nil
}

func (s *service) updateAddress(c context.Context, shopperUID string, addressUID string, label string, address cartapi.Address) (AddressBook, error) {
	err := validateAddress(address)
	if err != nil {
		return AddressBook{}, err
	}

	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Update address %s of shopper %s", addressUID, shopperUID)

	var book AddressBook
	err = s.addressStore.RunInTransaction(c, func(c context.Context) error {
		book, err = s.getAddressBook(c, shopperUID)
		if err != nil {
			return err
		}

		_, found := book.find(addressUID)
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("address %s not found for shopper %s", addressUID, shopperUID))
		}

		for i, saved := range book.Addresses {
			if saved.UID == addressUID {
				book.Addresses[i].Label = label
				book.Addresses[i].Address = address
			}
		}

		return s.store(c, &book)
	})
	if err != nil {
		return AddressBook{}, err
	}

	return book, nil
}

// removeAddress drops the address and, when it was the selected one, moves
// the selection to the first remaining address.
func (s *service) removeAddress(c context.Context, shopperUID string, addressUID string) (AddressBook, error) {
	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Remove address %s of shopper %s", addressUID, shopperUID)

	var book AddressBook
	err := s.addressStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		book, err = s.getAddressBook(c, shopperUID)
		if err != nil {
			return err
		}

		kept := []SavedAddress{}
		for _, saved := range book.Addresses {
			if saved.UID != addressUID {
				kept = append(kept, saved)
			}
		}
		book.Addresses = kept

		if book.SelectedUID == addressUID {
			book.SelectedUID = ""
			if len(book.Addresses) > 0 {
				book.SelectedUID = book.Addresses[0].UID
			}
		}

		return s.store(c, &book)
	})
	if err != nil {
		return AddressBook{}, err
	}

	return book, nil
}

func (s *service) selectAddress(c context.Context, shopperUID string, addressUID string) (AddressBook, error) {
	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Select address %s for shopper %s", addressUID, shopperUID)

	var book AddressBook
	err := s.addressStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		book, err = s.getAddressBook(c, shopperUID)
		if err != nil {
			return err
		}

		_, found := book.find(addressUID)
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("address %s not found for shopper %s", addressUID, shopperUID))
		}

		book.SelectedUID = addressUID

		return s.store(c, &book)
	})
	if err != nil {
		return AddressBook{}, err
	}

	return book, nil
}

func (s *service) store(c context.Context, book *AddressBook) error {
	now := s.nower.Now()
	book.LastModified = &now

	err := s.addressStore.Put(c, book.ShopperUID, *book)
	if err != nil {
		return myerrors.NewInternalError(err)
	}
	return nil
}

func validateAddress(address cartapi.Address) error {
	if address.RecipientName == "" || address.Phone == "" || address.Street == "" ||
		address.City == "" || address.PostalCode == "" {
		return myerrors.NewInvalidInputErrorf("incomplete address")
	}
	return nil
}
