package mysql

import (
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

func TestIsDuplicateError(t *testing.T) {
	assert.False(t, isDuplicateError(nil))
	assert.True(t, isDuplicateError(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateError(fmt.Errorf("insert: %w", &mysqldriver.MySQLError{Number: 1062})))
	assert.True(t, isDuplicateError(errors.New("Error 1062: Duplicate entry 'ORD-20251021-0001' for key 'order_no'")))
	assert.False(t, isDuplicateError(&mysqldriver.MySQLError{Number: 1213}))
}

func TestIsLockConflict(t *testing.T) {
	assert.False(t, isLockConflict(nil))
	assert.True(t, isLockConflict(&mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found"}))
	assert.True(t, isLockConflict(&mysqldriver.MySQLError{Number: 1205}))
	assert.True(t, isLockConflict(apperrors.Wrap(&mysqldriver.MySQLError{Number: 1213}, "创建订单失败")))
	assert.False(t, isLockConflict(&mysqldriver.MySQLError{Number: 1062}))
	assert.False(t, isLockConflict(errors.New("connection refused")))
}
