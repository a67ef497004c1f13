package mysql

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const insertUserSQL = `
INSERT INTO users (name, email, telephone, password_hash, role)
VALUES (?, ?, ?, ?, ?)
`

const getUserByEmailSQL = `
SELECT id, name, email, telephone, password_hash, role, created_at
FROM users
WHERE email = ?
`

const getUserByIDSQL = `
SELECT id, name, email, telephone, password_hash, role, created_at
FROM users
WHERE id = ?
`

const listUsersSQL = `
SELECT id, name, email, telephone, password_hash, role, created_at
FROM users
ORDER BY id
`

const updateUserRoleSQL = `
UPDATE users SET role = ? WHERE id = ?
`

// -----------------------------------------------------------------------------
// HOTELS
// -----------------------------------------------------------------------------

const insertHotelSQL = `
INSERT INTO hotels
  (user_id, name, city, address, telephone, description, latitude, longitude, images, validated)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const hotelColumns = `
  id, user_id, name, city, address, telephone, description, latitude, longitude, images, validated, created_at
`

const getHotelSQL = `
SELECT ` + hotelColumns + `
FROM hotels
WHERE id = ?
`

const updateHotelSQL = `
UPDATE hotels SET
  name = ?, city = ?, address = ?, telephone = ?, description = ?,
  latitude = ?, longitude = ?, images = ?
WHERE id = ?
`

const setHotelValidatedSQL = `
UPDATE hotels SET validated = ? WHERE id = ?
`

const deleteHotelSQL = `
DELETE FROM hotels WHERE id = ?
`

const hotelIDsSQL = `
SELECT id FROM hotels ORDER BY id
`

// -----------------------------------------------------------------------------
// ROOMS
// -----------------------------------------------------------------------------

const insertRoomSQL = `
INSERT INTO rooms (hotel_id, name, type, price, capacity, description, images)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const roomColumns = `
  id, hotel_id, name, type, price, capacity, description, images, created_at
`

const getRoomSQL = `
SELECT ` + roomColumns + `
FROM rooms
WHERE id = ?
`

const listRoomsSQL = `
SELECT ` + roomColumns + `
FROM rooms
WHERE hotel_id = ?
ORDER BY id
`

const listAllRoomsSQL = `
SELECT ` + roomColumns + `
FROM rooms
ORDER BY id
LIMIT ?
`

const listRoomsByOwnerSQL = `
SELECT r.id, r.hotel_id, r.name, r.type, r.price, r.capacity, r.description, r.images, r.created_at
FROM rooms r
JOIN hotels h ON h.id = r.hotel_id
WHERE h.user_id = ?
ORDER BY r.id
`

const updateRoomSQL = `
UPDATE rooms SET
  name = ?, type = ?, price = ?, capacity = ?, description = ?, images = ?
WHERE id = ?
`

const deleteRoomSQL = `
DELETE FROM rooms WHERE id = ?
`

// -----------------------------------------------------------------------------
// RESERVATIONS
// -----------------------------------------------------------------------------

// Locks the room row; concurrent bookings for the same room serialize here.
const lockRoomSQL = `
SELECT hotel_id FROM rooms WHERE id = ? FOR UPDATE
`

// Confirmed stays for the room, locked for the duration of the booking tx so
// a racing insert cannot slip between the overlap check and our insert.
const confirmedRangesSQL = `
SELECT check_in, check_out
FROM reservations
WHERE room_id = ? AND status = 'confirmed'
FOR UPDATE
`

const insertReservationSQL = `
INSERT INTO reservations (user_id, room_id, hotel_id, check_in, check_out, status)
VALUES (?, ?, ?, ?, ?, ?)
`

const reservationColumns = `
  id, user_id, room_id, hotel_id, check_in, check_out, status, created_at
`

const getReservationSQL = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE id = ?
`

const listReservationsSQL = `
SELECT ` + reservationColumns + `
FROM reservations
ORDER BY id
`

const listReservationsByUserSQL = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE user_id = ?
ORDER BY id
`

const listReservationsByOwnerSQL = `
SELECT r.id, r.user_id, r.room_id, r.hotel_id, r.check_in, r.check_out, r.status, r.created_at
FROM reservations r
JOIN hotels h ON h.id = r.hotel_id
WHERE h.user_id = ?
ORDER BY r.id
`

const setReservationStatusSQL = `
UPDATE reservations SET status = ? WHERE id = ?
`

const deleteReservationSQL = `
DELETE FROM reservations WHERE id = ?
`

const expirePendingSQL = `
UPDATE reservations
SET status = 'cancelled'
WHERE hotel_id = ? AND status = 'pending' AND created_at < ?
`
