package models

import "fmt"

type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleAdmin      UserRole = "admin"
	RoleManager    UserRole = "manager"
	RoleCashier    UserRole = "cashier"
	RoleServer     UserRole = "server"
)

// AllRoles sabit rol kümesi, yüksekten düşüğe sıralı.
var AllRoles = []UserRole{
	RoleSuperAdmin,
	RoleAdmin,
	RoleManager,
	RoleCashier,
	RoleServer,
}

// roleRanks her rol için tek bir derece tanımlar. Dizide indexOf aramak yerine
// açık tablo: yeni eklenen bir rol derecesiz kalırsa init'te yakalanır.
var roleRanks = map[UserRole]int{
	RoleSuperAdmin: 50,
	RoleAdmin:      40,
	RoleManager:    30,
	RoleCashier:    20,
	RoleServer:     10,
}

func init() {
	if err := validateRoleRanks(); err != nil {
		panic(err)
	}
}

func validateRoleRanks() error {
	if len(roleRanks) != len(AllRoles) {
		return fmt.Errorf("rol derece tablosu eksik: %d rol, %d derece", len(AllRoles), len(roleRanks))
	}
	seen := map[int]UserRole{}
	for _, r := range AllRoles {
		rank, ok := roleRanks[r]
		if !ok {
			return fmt.Errorf("rol için derece tanımlı değil: %s", r)
		}
		if other, dup := seen[rank]; dup {
			return fmt.Errorf("aynı derece iki rolde: %s ve %s", other, r)
		}
		seen[rank] = r
	}
	return nil
}

// Rank rolün derecesini döner; bilinmeyen rol için -1.
func Rank(role UserRole) int {
	if rank, ok := roleRanks[role]; ok {
		return rank
	}
	return -1
}

func ValidRole(role UserRole) bool {
	_, ok := roleRanks[role]
	return ok
}

// CanManage actor'ün target rolündeki bir hesabı yönetip yönetemeyeceğini söyler.
// Kesin büyüklük: eşit dereceler birbirini yönetemez (admin admin'i kapatamaz).
func CanManage(actor, target UserRole) bool {
	ar, tr := Rank(actor), Rank(target)
	if ar < 0 || tr < 0 {
		return false
	}
	return ar > tr
}

// WouldEscalate yeni hesap açılırken istenen rolün, açan hesabın derecesine eşit
// veya üstünde olup olmadığını söyler. Kimse kendi derecesinde hesap basamaz.
func WouldEscalate(creator, requested UserRole) bool {
	cr, rr := Rank(creator), Rank(requested)
	if cr < 0 || rr < 0 {
		return true
	}
	return rr >= cr
}
