package bluem

import (
	"github.com/google/uuid"
	"github.com/srg/bluem/internal/objtree"
)

// Interface names exposed on the bus
const (
	AdapterInterface        = "org.bluem.Adapter1"
	DeviceInterface         = "org.bluem.Device1"
	GattServiceInterface    = "org.bluem.GattService1"
	GattCharacteristicIface = "org.bluem.GattCharacteristic1"
	AdminInterface          = "org.mock"
	ObjectManagerInterface  = "org.freedesktop.DBus.ObjectManager"
)

// Default fixed paths
const (
	DefaultAdapterPath objtree.Path = "/org/bluem/hci1"
	DefaultAdminPath   objtree.Path = "/org/mock"
)

// Well-known GATT UUIDs advertised by every connected mock device
var (
	BatteryServiceUUID    = uuid.MustParse("0000180f-0000-1000-8000-00805f9b34fb")
	BatteryLevelUUID      = uuid.MustParse("00002a19-0000-1000-8000-00805f9b34fb")
	DeviceInformationUUID = uuid.MustParse("0000180a-0000-1000-8000-00805f9b34fb")
	ManufacturerNameUUID  = uuid.MustParse("00002a29-0000-1000-8000-00805f9b34fb")
)
